// Package availability decides whether a dropping domain is really available
// by probing DNS directly. Plain resolver APIs collapse NXDOMAIN, empty
// answers and server failures into one error, so the prober speaks raw DNS to
// keep those outcomes apart.
package availability

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"

	"snapback/pkg/domain"
)

// queryTypes is the fixed record-type order a name is probed in. Any
// conclusive hit short-circuits the rest.
var queryTypes = []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeNS, dns.TypeMX} //nolint: gochecknoglobals

// exchangeFunc performs one DNS round trip. Swapped out in tests.
type exchangeFunc func(ctx context.Context, msg *dns.Msg, server string) (*dns.Msg, error)

// Prober resolves availability verdicts for domain names. It is safe for
// concurrent use.
type Prober struct {
	server   string
	exchange exchangeFunc
}

// New constructs a Prober that queries the given DNS server ("host:port")
// with the given per-query timeout. An empty server falls back to the system
// resolver configuration.
func New(server string, timeout time.Duration) *Prober {
	if server == "" {
		server = DefaultResolver()
	}

	client := &dns.Client{Timeout: timeout}

	return &Prober{
		server: server,
		exchange: func(ctx context.Context, msg *dns.Msg, server string) (*dns.Msg, error) {
			resp, _, err := client.ExchangeContext(ctx, msg, server)

			return resp, err
		},
	}
}

// DefaultResolver returns the first nameserver from the system resolver
// configuration, or a well-known public resolver when that cannot be read.
func DefaultResolver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return "8.8.8.8:53"
	}

	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// Probe resolves one name to an availability verdict:
//
//   - NOERROR, with or without answer records, proves the name exists in the
//     zone and yields Registered. An empty answer just means the queried type
//     has no records.
//   - NXDOMAIN moves on to the next record type.
//   - Server failures (SERVFAIL, REFUSED, ...) and timeouts also move on; a
//     broken resolver path must not make a name look registered.
//   - A name that survives every record type is Available.
//
// A canceled context yields Unknown: no conclusion was reached.
func (p *Prober) Probe(ctx context.Context, name string) domain.Availability {
	fqdn := dns.Fqdn(name)

	for _, qtype := range queryTypes {
		if ctx.Err() != nil {
			return domain.AvailabilityUnknown
		}

		msg := new(dns.Msg)
		msg.SetQuestion(fqdn, qtype)
		msg.RecursionDesired = true

		resp, err := p.exchange(ctx, msg, p.server)
		if err != nil || resp == nil {
			continue
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
			return domain.AvailabilityRegistered
		case dns.RcodeNameError:
			continue
		default:
			continue
		}
	}

	return domain.AvailabilityAvailable
}

// ProbeAll annotates every candidate with its availability verdict, in place.
// Order and count are always preserved; filtering on the verdict is the
// caller's decision.
func (p *Prober) ProbeAll(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	for i := range candidates {
		candidates[i].Available = p.Probe(ctx, candidates[i].Name)
	}

	return candidates
}
