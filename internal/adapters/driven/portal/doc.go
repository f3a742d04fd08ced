// Package portal implements the session ports against the AFIP web
// portal using chromedp. Each session owns an isolated headless (or
// headful) Chrome instance with its own profile and download directory;
// all page interactions are paced through a limiter shared across
// sessions so batch width never multiplies the portal request rate.
package portal
