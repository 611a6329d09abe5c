package origins

import (
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/taisey/cors/cfgerrors"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	wildcardSeq  = "*." // marks one or more period-separated DNS labels
	portWildcard = "*"  // marks an arbitrary (possibly implicit) port

	// AnyPort is the Port of patterns whose port is a wildcard.
	AnyPort = -1
)

// Kind represents the kind of a host pattern.
type Kind uint8

const (
	Domain              Kind = iota // exact domain
	ArbitrarySubdomains             // arbitrary subdomains of a domain
	IP                              // IP address
)

// A Pattern represents an origin pattern.
// The zero value does not correspond to a valid pattern.
type Pattern struct {
	// Raw is the pattern as it was specified.
	Raw string
	// Scheme is the scheme of this origin pattern.
	Scheme string
	// Host is the host of this origin pattern, without any leading "*."
	// and without the brackets of IPv6 addresses.
	Host string
	// Port is the port number (if any) of this origin pattern.
	// 0 marks the absence of an explicit port; AnyPort marks a port wildcard.
	Port int
	// Kind is the kind of this origin pattern's host.
	Kind Kind
}

// IsExact reports whether p encompasses exactly one origin, namely p.Raw.
func (p *Pattern) IsExact() bool {
	return p.Kind != ArbitrarySubdomains && p.Port != AnyPort
}

// ParsePattern parses str into a fully valid [Pattern].
// If it fails, it returns a non-nil *cfgerrors.UnacceptableOriginPatternError.
// Origin pattern "*" is handled elsewhere.
func ParsePattern(str string) (Pattern, error) {
	// url.Parse is in some ways too permissive and in other ways too strict
	// for our needs; manual scanning plus net/netip and golang.org/x/net
	// are a better fit.
	if len(str) > maxOriginLen {
		return Pattern{}, invalid(str)
	}
	if str == "null" {
		return Pattern{}, prohibited(str)
	}
	p := Pattern{Raw: str}
	scheme, rest, ok := parseScheme(str)
	if !ok {
		return Pattern{}, invalid(str)
	}
	if scheme == "file" {
		return Pattern{}, prohibited(str)
	}
	p.Scheme = scheme
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return Pattern{}, invalid(str)
	}
	var host string
	if strings.HasPrefix(rest, "[") {
		host, rest, ok = strings.Cut(rest[1:], "]")
		if !ok {
			return Pattern{}, invalid(str)
		}
		if err := p.setIP(host, true); err != nil {
			return Pattern{}, err
		}
	} else {
		host, rest = scanHostPattern(rest)
		if err := p.setHost(host); err != nil {
			return Pattern{}, err
		}
	}
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return Pattern{}, invalid(str)
		}
		if rest == portWildcard {
			p.Port = AnyPort
		} else if p.Port, ok = parsePort(rest); !ok {
			return Pattern{}, invalid(str)
		}
		if isDefaultPortForScheme(p.Scheme, p.Port) {
			return Pattern{}, prohibited(str)
		}
	}
	return p, nil
}

func (p *Pattern) setHost(host string) error {
	base, wildcardSubs := strings.CutPrefix(host, wildcardSeq)
	if base == "" || base[0] == labelSep {
		return invalid(p.Raw)
	}
	// If the last non-empty label starts with a digit,
	// assume an IPv4 address, since no TLD starts with a digit
	// (see https://www.iana.org/domains/root/db).
	label := strings.TrimSuffix(base, string(labelSep))
	if i := strings.LastIndexByte(label, labelSep); i >= 0 {
		label = label[i+1:]
	}
	if label == "" {
		return invalid(p.Raw)
	}
	if isDigit(label[0]) {
		if wildcardSubs {
			return invalid(p.Raw)
		}
		return p.setIP(base, false)
	}
	if len(host) > maxHostLen {
		return invalid(p.Raw)
	}
	profileOnce.Do(initProfile)
	if _, err := profile.ToASCII(base); err != nil {
		return prohibited(p.Raw)
	}
	p.Host = base
	if wildcardSubs {
		p.Kind = ArbitrarySubdomains
	}
	return nil
}

func (p *Pattern) setIP(host string, bracketed bool) error {
	ip, err := netip.ParseAddr(host)
	if err != nil || ip.Zone() != "" || ip.Is6() != bracketed {
		return invalid(p.Raw)
	}
	// IPv4-mapped IPv6 addresses and non-canonical forms are prohibited.
	if ip.Is4In6() || host != ip.String() {
		return prohibited(p.Raw)
	}
	p.Host = host
	p.Kind = IP
	return nil
}

// scanHostPattern scans a host pattern at the start of str without
// validating it.
func scanHostPattern(str string) (host, rest string) {
	i := 0
	if strings.HasPrefix(str, wildcardSeq) {
		i = len(wildcardSeq)
	}
	for i < len(str) && isDomainByte(str[i]) {
		i++
	}
	return str[:i], str[i:]
}

var (
	profileOnce sync.Once     // guards init of profile via initProfile
	profile     *idna.Profile // lazily initialized
)

func initProfile() {
	profile = idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
}

func isDefaultPortForScheme(scheme string, port int) bool {
	return port == 80 && scheme == "http" || port == 443 && scheme == "https"
}

// HostIsEffectiveTLD reports whether p's host is an effective top-level
// domain (eTLD), also known as [public suffix].
//
// [public suffix]: https://publicsuffix.org/list/
func (p *Pattern) HostIsEffectiveTLD() bool {
	if p.Kind == IP {
		return false
	}
	host := strings.TrimSuffix(p.Host, string(labelSep))
	// The second result is false for some listed eTLDs (e.g. github.io);
	// ignore it.
	etld, _ := publicsuffix.PublicSuffix(host)
	return etld == host
}

// String returns the canonical textual representation of p.
func (p *Pattern) String() string {
	var sb strings.Builder
	sb.WriteString(p.Scheme)
	sb.WriteString(schemeHostSep)
	if p.Kind == ArbitrarySubdomains {
		sb.WriteString(wildcardSeq)
	}
	if p.Kind == IP && strings.IndexByte(p.Host, hostPortSep) >= 0 {
		sb.WriteByte('[')
		sb.WriteString(p.Host)
		sb.WriteByte(']')
	} else {
		sb.WriteString(p.Host)
	}
	switch p.Port {
	case 0:
	case AnyPort:
		sb.WriteString(":*")
	default:
		sb.WriteByte(hostPortSep)
		sb.WriteString(strconv.Itoa(p.Port))
	}
	return sb.String()
}

func invalid(pattern string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: "invalid",
	}
}

func prohibited(pattern string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: "prohibited",
	}
}
