package cams

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ErrParse is returned when a page does not have the structure the scraper expects.
var ErrParse = errors.New("cams: unexpected page structure")

// ErrNetworkFailure is returned when the portal could not be reached or it returned
// a non-2xx status.
var ErrNetworkFailure = errors.New("cams: network failure")

// AuthError is returned when the portal rejects a login or the login request
// could not be completed.
type AuthError struct {
	// Message is the error message given by the portal, if any.
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" && e.Err != nil {
		return fmt.Sprintf("cams: login failed: %s: %s", e.Message, e.Err.Error())
	}
	if e.Message != "" {
		return fmt.Sprintf("cams: login failed: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("cams: login failed: %s", e.Err.Error())
	}
	return "cams: login failed"
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

// respOrStatusErr turns transport failures and non-2xx responses into ErrNetworkFailure.
func respOrStatusErr(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return nil, errors.Join(ErrNetworkFailure, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s %s returned %s", ErrNetworkFailure, res.Request.Method, res.Request.URL, res.Status())
	}
	return res, nil
}
