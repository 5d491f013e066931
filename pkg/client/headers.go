package client

import "net/http"

// validHeaderValue reports whether s can be sent as an HTTP header value.
// Control bytes other than horizontal tab would corrupt the header block,
// so they are rejected rather than escaped.
func validHeaderValue(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 && b != '\t' {
			return false
		}
		if b == 0x7f {
			return false
		}
	}
	return true
}

// buildHeaders assembles the headers sent with every request: the required
// Client-Id, Accept, and the optional User-Agent and Authorization. All
// values are validated so a bad configuration surfaces as
// KindInvalidHeaderValue instead of a mangled request.
func buildHeaders(clientID, bearerToken, userAgent string) (http.Header, error) {
	if !validHeaderValue(clientID) {
		return nil, &Error{
			Kind:    KindInvalidHeaderValue,
			Message: "client id contains bytes not allowed in a header value",
		}
	}

	headers := http.Header{}
	headers.Set("Client-Id", clientID)
	headers.Set("Accept", "application/json")

	if userAgent != "" {
		if !validHeaderValue(userAgent) {
			return nil, &Error{
				Kind:    KindInvalidHeaderValue,
				Message: "user agent contains bytes not allowed in a header value",
			}
		}
		headers.Set("User-Agent", userAgent)
	}

	if bearerToken != "" {
		if !validHeaderValue(bearerToken) {
			return nil, &Error{
				Kind:    KindInvalidHeaderValue,
				Message: "bearer token contains bytes not allowed in a header value",
			}
		}
		headers.Set("Authorization", "Bearer "+bearerToken)
	}

	return headers, nil
}
