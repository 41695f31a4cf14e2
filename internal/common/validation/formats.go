package validation

import (
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
)

// IsWellFormedURL accepts absolute http and https URLs with a host.
func IsWellFormedURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !govalidator.IsURL(s) || !govalidator.IsRequestURL(s) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func IsEmail(s string) bool {
	return govalidator.IsEmail(strings.TrimSpace(s))
}
