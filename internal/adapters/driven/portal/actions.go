package portal

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chromedp/chromedp"
)

// Typing jitter bounds in milliseconds, matching the cadence of a
// person working through the form.
const (
	typeDelayMinMs = 100
	typeDelayMaxMs = 300
)

// errNoOption reports a select element that exists but does not offer
// the requested value, which means the portal refuses that choice for
// this issuer.
var errNoOption = errors.New("option not offered")

// jitter returns a random duration between minMs and maxMs milliseconds.
func jitter(minMs, maxMs int) time.Duration {
	return time.Duration(minMs+rand.N(maxMs-minMs+1)) * time.Millisecond
}

// pause sleeps for a random duration between minMs and maxMs
// milliseconds.
func pause(minMs, maxMs int) chromedp.Action {
	return chromedp.Sleep(jitter(minMs, maxMs))
}

// humanType focuses the element and types the text one keystroke at a
// time with per-key jitter.
func humanType(sel, text string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := chromedp.Click(sel, chromedp.ByQuery).Do(ctx); err != nil {
			return err
		}
		for _, r := range text {
			if err := chromedp.SendKeys(sel, string(r), chromedp.ByQuery).Do(ctx); err != nil {
				return err
			}
			if err := chromedp.Sleep(jitter(typeDelayMinMs, typeDelayMaxMs)).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

const setFieldJS = `(() => {
	const el = document.querySelector(%q);
	if (!el) return 'missing';
	el.value = %q;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return 'ok';
})()`

// setField writes a value into an input or textarea and fires the input
// and change events the portal's scripts listen on.
func setField(sel, value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var res string
		if err := chromedp.Evaluate(fmt.Sprintf(setFieldJS, sel, value), &res).Do(ctx); err != nil {
			return err
		}
		if res != "ok" {
			return fmt.Errorf("field %s not found", sel)
		}
		return nil
	})
}

const selectOptionJS = `(() => {
	const el = document.querySelector(%q);
	if (!el) return 'missing';
	if (!Array.from(el.options).some(o => o.value === %q)) return 'no-option';
	el.value = %q;
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return 'ok';
})()`

// selectOption picks a select option by value and fires the change
// event. A select that does not offer the value yields errNoOption.
func selectOption(sel, value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var res string
		expr := fmt.Sprintf(selectOptionJS, sel, value, value)
		if err := chromedp.Evaluate(expr, &res).Do(ctx); err != nil {
			return err
		}
		switch res {
		case "ok":
			return nil
		case "no-option":
			return fmt.Errorf("%w: %s has no option %q", errNoOption, sel, value)
		default:
			return fmt.Errorf("select %s not found", sel)
		}
	})
}

const checkBoxJS = `(() => {
	const el = document.querySelector(%q);
	if (!el) return 'missing';
	if (!el.checked) el.click();
	return 'ok';
})()`

// checkBox ensures a checkbox is ticked, clicking it only when needed.
func checkBox(sel string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var res string
		if err := chromedp.Evaluate(fmt.Sprintf(checkBoxJS, sel), &res).Do(ctx); err != nil {
			return err
		}
		if res != "ok" {
			return fmt.Errorf("checkbox %s not found", sel)
		}
		return nil
	})
}

const setItemFieldJS = `(() => {
	const fields = document.getElementsByName(%q);
	if (fields.length <= %d) return 'missing';
	const el = fields[%d];
	el.value = %q;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return 'ok';
})()`

// setItemField writes a value into the index-th line item field of the
// given name. Line item fields repeat their name attribute per row.
func setItemField(name string, index int, value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var res string
		expr := fmt.Sprintf(setItemFieldJS, name, index, index, value)
		if err := chromedp.Evaluate(expr, &res).Do(ctx); err != nil {
			return err
		}
		if res != "ok" {
			return fmt.Errorf("line %d has no field %s", index+1, name)
		}
		return nil
	})
}

const selectItemOptionJS = `(() => {
	const fields = document.getElementsByName(%q);
	if (fields.length <= %d) return 'missing';
	const el = fields[%d];
	if (!Array.from(el.options).some(o => o.value === %q)) return 'no-option';
	el.value = %q;
	el.dispatchEvent(new Event('change', {bubbles: true}));
	return 'ok';
})()`

// selectItemOption picks an option on the index-th line item select of
// the given name.
func selectItemOption(name string, index int, value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var res string
		expr := fmt.Sprintf(selectItemOptionJS, name, index, index, value, value)
		if err := chromedp.Evaluate(expr, &res).Do(ctx); err != nil {
			return err
		}
		switch res {
		case "ok":
			return nil
		case "no-option":
			return fmt.Errorf("%w: line %d select %s has no option %q", errNoOption, index+1, name, value)
		default:
			return fmt.Errorf("line %d has no select %s", index+1, name)
		}
	})
}

// poll evaluates the expression until it yields a non-empty string,
// storing the value in res. The caller's context bounds the wait.
func poll(expr string, interval time.Duration, res *string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			var out string
			if err := chromedp.Evaluate(expr, &out).Do(ctx); err != nil {
				return err
			}
			if out != "" {
				*res = out
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}
