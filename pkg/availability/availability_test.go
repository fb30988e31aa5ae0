package availability

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"snapback/pkg/domain"
)

// fakeExchange records every question and answers via fn.
type fakeExchange struct {
	questions []dns.Question
	fn        func(q dns.Question) (*dns.Msg, error)
}

func (f *fakeExchange) exchange(_ context.Context, msg *dns.Msg, _ string) (*dns.Msg, error) {
	q := msg.Question[0]
	f.questions = append(f.questions, q)

	return f.fn(q)
}

func newTestProber(fn func(q dns.Question) (*dns.Msg, error)) (*Prober, *fakeExchange) {
	fake := &fakeExchange{fn: fn}
	p := New("203.0.113.53:53", time.Second)
	p.exchange = fake.exchange

	return p, fake
}

func reply(q dns.Question, rcode int) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(q.Name, q.Qtype)
	resp := new(dns.Msg)
	resp.SetReply(msg)
	resp.Rcode = rcode

	return resp
}

func replyWithA(q dns.Question) *dns.Msg {
	resp := reply(q, dns.RcodeSuccess)
	resp.Answer = append(resp.Answer, &dns.A{
		Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300},
		A:   net.ParseIP("192.0.2.1"),
	})

	return resp
}

func TestProbeAnswerMeansRegistered(t *testing.T) {
	p, fake := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		return replyWithA(q), nil
	})

	got := p.Probe(context.Background(), "taken.se")
	require.Equal(t, domain.AvailabilityRegistered, got)
	require.Len(t, fake.questions, 1, "first conclusive answer should short-circuit")
}

func TestProbeEmptyNoErrorMeansRegistered(t *testing.T) {
	// NOERROR with an empty answer section: the name exists in the zone even
	// though it has no records of the queried type.
	p, fake := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		return reply(q, dns.RcodeSuccess), nil
	})

	got := p.Probe(context.Background(), "parked.se")
	require.Equal(t, domain.AvailabilityRegistered, got)
	require.Len(t, fake.questions, 1)
}

func TestProbeAllNXDOMAINMeansAvailable(t *testing.T) {
	p, fake := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		return reply(q, dns.RcodeNameError), nil
	})

	got := p.Probe(context.Background(), "gone.se")
	require.Equal(t, domain.AvailabilityAvailable, got)

	var qtypes []uint16
	for _, q := range fake.questions {
		qtypes = append(qtypes, q.Qtype)
	}
	require.Equal(t, []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeNS, dns.TypeMX}, qtypes,
		"all record types must be probed in fixed order")
}

func TestProbeLaterTypeHitMeansRegistered(t *testing.T) {
	p, fake := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		if q.Qtype == dns.TypeNS {
			return reply(q, dns.RcodeSuccess), nil
		}

		return reply(q, dns.RcodeNameError), nil
	})

	got := p.Probe(context.Background(), "nsonly.se")
	require.Equal(t, domain.AvailabilityRegistered, got)
	require.Len(t, fake.questions, 3, "A and AAAA miss, NS hits")
}

func TestProbeServerFailuresMeanAvailable(t *testing.T) {
	for _, rcode := range []int{dns.RcodeServerFailure, dns.RcodeRefused} {
		p, _ := newTestProber(func(q dns.Question) (*dns.Msg, error) {
			return reply(q, rcode), nil
		})

		got := p.Probe(context.Background(), "broken.se")
		require.Equal(t, domain.AvailabilityAvailable, got, "rcode %d", rcode)
	}
}

func TestProbeAllTimeoutsMeanAvailable(t *testing.T) {
	p, fake := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		return nil, errors.New("i/o timeout")
	})

	got := p.Probe(context.Background(), "slow.se")
	require.Equal(t, domain.AvailabilityAvailable, got)
	require.Len(t, fake.questions, 4, "every type should still be tried")
}

func TestProbeTimeoutThenHitMeansRegistered(t *testing.T) {
	p, _ := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		if q.Qtype == dns.TypeA {
			return nil, errors.New("i/o timeout")
		}

		return replyWithA(q), nil
	})

	got := p.Probe(context.Background(), "flaky.se")
	require.Equal(t, domain.AvailabilityRegistered, got)
}

func TestProbeCanceledContextMeansUnknown(t *testing.T) {
	p, fake := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		return replyWithA(q), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := p.Probe(ctx, "whatever.se")
	require.Equal(t, domain.AvailabilityUnknown, got)
	require.Empty(t, fake.questions, "no queries after cancellation")
}

func TestProbeAllAnnotatesInPlace(t *testing.T) {
	p, _ := newTestProber(func(q dns.Question) (*dns.Msg, error) {
		if q.Name == "taken.se." {
			return replyWithA(q), nil
		}

		return reply(q, dns.RcodeNameError), nil
	})

	candidates := domain.NewCandidates([]domain.DropRecord{
		{Name: "taken.se", ReleaseAt: "2026-01-15", TLD: domain.TLDSe},
		{Name: "free.se", ReleaseAt: "2026-01-15", TLD: domain.TLDSe},
		{Name: "free.nu", ReleaseAt: "2026-01-15", TLD: domain.TLDNu},
	})

	got := p.ProbeAll(context.Background(), candidates)

	require.Len(t, got, 3, "probing must never drop candidates")
	require.Equal(t, "taken.se", got[0].Name, "order must be preserved")
	require.Equal(t, domain.AvailabilityRegistered, got[0].Available)
	require.Equal(t, domain.AvailabilityAvailable, got[1].Available)
	require.Equal(t, domain.AvailabilityAvailable, got[2].Available)
	require.Equal(t, domain.IndexUnknown, got[0].Indexed, "index verdict must stay untouched")
}

func TestDefaultResolverNeverEmpty(t *testing.T) {
	require.NotEmpty(t, DefaultResolver())
}
