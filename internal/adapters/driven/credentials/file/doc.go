// Package file provides the file-based implementation of the credential
// store driven port. Credentials persist as a JSON array in issuers.json
// under the facturante config directory, readable only by the owner.
package file
