// Package origins parses Web origins and origin patterns and decides
// whether a given origin is encompassed by a set of patterns.
package origins

import "strings"

const (
	schemeHostSep = "://" // scheme-host separator
	hostPortSep   = ':'   // host-port separator
	labelSep      = '.'   // DNS-label separator

	// maxHostLen is dominated by the maximum length of an (absolute)
	// domain name; see https://devblogs.microsoft.com/oldnewthing/20120412-00/?p=7873.
	maxHostLen = 253
	// maxSchemeLen is somewhat arbitrary but covers the great majority
	// of commonly used schemes.
	maxSchemeLen = 64
	// maxPortLen is the maximum length of a port's decimal representation.
	maxPortLen = len("65535")
	// maxOriginLen is the maximum length of an origin.
	maxOriginLen = maxSchemeLen + len(schemeHostSep) + maxHostLen + 1 + maxPortLen
)

// Origin represents a (tuple) [Web origin].
//
// [Web origin]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
type Origin struct {
	Scheme string
	// Host is the origin's raw host; the brackets of IPv6 addresses
	// are stripped.
	Host string
	// Port is the origin's explicit port, or 0 if the origin has none.
	Port int
}

// Parse parses str into an [Origin].
// It is lenient insofar as it performs just enough validation for
// [Matcher.Contains] to know what to do with the result.
// In particular, the scheme and port of the result are guaranteed
// to be valid, but its host isn't.
func Parse(str string) (Origin, bool) {
	if len(str) > maxOriginLen {
		return Origin{}, false
	}
	scheme, rest, ok := parseScheme(str)
	if !ok {
		return Origin{}, false
	}
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return Origin{}, false
	}
	var host string
	if strings.HasPrefix(rest, "[") { // looks like an IPv6 address
		host, rest, ok = strings.Cut(rest[1:], "]")
		if !ok || host == "" {
			return Origin{}, false
		}
	} else {
		i := 0
		for i < len(rest) && isDomainByte(rest[i]) {
			i++
		}
		host, rest = rest[:i], rest[i:]
		if host == "" || host[0] == labelSep {
			return Origin{}, false
		}
	}
	var port int
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return Origin{}, false
		}
		port, ok = parsePort(rest)
		if !ok {
			return Origin{}, false
		}
	}
	return Origin{Scheme: scheme, Host: host, Port: port}, true
}

// parseScheme parses a URI scheme. If successful, it returns the scheme,
// the unconsumed part of str, and true.
// See https://www.rfc-editor.org/rfc/rfc3986.html#section-3.1.
func parseScheme(str string) (scheme, rest string, ok bool) {
	if str == "" || !isLowerAlpha(str[0]) {
		return "", str, false
	}
	end := min(maxSchemeLen, len(str))
	i := 1
	for i < end && isSubsequentSchemeByte(str[i]) {
		i++
	}
	return str[:i], str[i:], true
}

// parsePort parses a port number in the 1-65535 range;
// str must contain nothing else.
func parsePort(str string) (int, bool) {
	if str == "" || len(str) > maxPortLen || str[0] == '0' {
		return 0, false
	}
	var port int
	for i := range len(str) {
		if !isDigit(str[i]) {
			return 0, false
		}
		port = 10*port + int(str[i]-'0')
	}
	if port > 1<<16-1 {
		return 0, false
	}
	return port, true
}

func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSubsequentSchemeByte(c byte) bool {
	return isLowerAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.'
}

// isDomainByte reports whether c is an ASCII lowercase letter, an ASCII digit,
// a hyphen, a period, or an underscore (see https://stackoverflow.com/q/2180465).
func isDomainByte(c byte) bool {
	return isLowerAlpha(c) || isDigit(c) || c == '-' || c == labelSep || c == '_'
}
