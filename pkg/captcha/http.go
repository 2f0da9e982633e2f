package captcha

import "net/http"

// HTTP is the subset of *http.Client the widget needs to probe its script.
type HTTP interface {
	Do(req *http.Request) (*http.Response, error)
}
