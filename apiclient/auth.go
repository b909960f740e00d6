package apiclient

import "net/http"

// applyBasicAuth sets credentials only when both halves are configured.
func applyBasicAuth(req *http.Request, username, password string) {
	if username == "" || password == "" {
		return
	}
	req.SetBasicAuth(username, password)
}
