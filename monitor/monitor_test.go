package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ipastusi/dhcpreact/event"
	"github.com/ipastusi/dhcpreact/notify"
)

type fakeProcessor struct {
	events []event.DhcpAck
	err    error
	panics bool
}

func (p *fakeProcessor) Process(_ context.Context, ev event.DhcpAck) (notify.Outcome, error) {
	if p.panics {
		p.panics = false
		panic("boom")
	}
	p.events = append(p.events, ev)
	return notify.Outcome{Mac: ev.Mac}, p.err
}

type fakeArchiver struct {
	lines []string
	err   error
}

func (a *fakeArchiver) Write(line string, _ time.Time) error {
	a.lines = append(a.lines, line)
	return a.err
}

func newTestMonitor(processor *fakeProcessor, archiver LineArchiver, observers ...Observer) *Monitor {
	filter := event.NewFilter(
		map[string]struct{}{"192.168.1.1": {}},
		map[string]struct{}{"AA:BB:CC:00:00:01": {}},
	)
	m := New(nil, archiver, filter, processor, observers...)
	m.now = func() time.Time { return time.Date(2025, 6, 14, 10, 30, 0, 0, time.Local) }
	return m
}

func Test_MonitorHandleLine(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	archiver := &fakeArchiver{}
	var observed []string
	m := newTestMonitor(processor, archiver, func(ev event.DhcpAck, outcome notify.Outcome) {
		observed = append(observed, outcome.Mac)
	})

	lines := []string{
		"dnsmasq-dhcp[1]: DHCPACK(br0) 192.168.1.10 aa:bb:cc:00:11:22 phone",
		"dnsmasq-dhcp[1]: DHCPACK(br0) 192.168.1.10 aa:bb:cc:00:11:22 phone",
		"dnsmasq-dhcp[1]: DHCPREQUEST(br0) 192.168.1.10 aa:bb:cc:00:11:22",
		"dnsmasq-dhcp[1]: DHCPACK(br0) 192.168.1.1 aa:bb:cc:00:11:23",
		"dnsmasq-dhcp[1]: DHCPACK(br0) 192.168.1.12 aa:bb:cc:00:00:01",
		"dnsmasq-dhcp[1]: DHCPACK(br0)",
		"dnsmasq-dhcp[1]: DHCPACK(br0) 192.168.1.10 aa:bb:cc:00:11:22 phone",
	}
	for _, line := range lines {
		m.HandleLine(context.Background(), line)
	}

	if len(archiver.lines) != len(lines)-1 {
		t.Errorf("expected every distinct line archived, got: %v", len(archiver.lines))
	}
	expected := []string{"AA:BB:CC:00:11:22", "AA:BB:CC:00:11:22"}
	if diff := cmp.Diff(expected, observed); diff != "" {
		t.Errorf("unexpected observed events (-want +got):\n%s", diff)
	}
	if len(processor.events) != 2 {
		t.Fatalf("expected 2 processed events, got: %v", len(processor.events))
	}
	phone := "phone"
	expectedEvent := event.DhcpAck{Ip: "192.168.1.10", Mac: "AA:BB:CC:00:11:22", HostName: &phone, Ts: m.now()}
	if diff := cmp.Diff(expectedEvent, processor.events[0]); diff != "" {
		t.Errorf("unexpected event (-want +got):\n%s", diff)
	}
}

func Test_MonitorTruncatesEventTime(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	m := newTestMonitor(processor, nil)
	m.now = func() time.Time { return time.Date(2025, 6, 14, 10, 30, 15, 987654321, time.Local) }

	m.HandleLine(context.Background(), "DHCPACK 192.168.1.10 aa:bb:cc:00:11:22")

	if len(processor.events) != 1 {
		t.Fatalf("expected 1 processed event, got: %v", len(processor.events))
	}
	expected := time.Date(2025, 6, 14, 10, 30, 15, 0, time.Local)
	if !processor.events[0].Ts.Equal(expected) {
		t.Errorf("expected: %v, got: %v", expected, processor.events[0].Ts)
	}
}

func Test_MonitorSurvivesFailures(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{panics: true, err: errors.New("save failed")}
	archiver := &fakeArchiver{err: errors.New("disk full")}
	m := newTestMonitor(processor, archiver)

	m.HandleLine(context.Background(), "DHCPACK 192.168.1.10 aa:bb:cc:00:11:22")
	m.HandleLine(context.Background(), "DHCPACK 192.168.1.11 aa:bb:cc:00:11:23")

	if len(processor.events) != 1 || processor.events[0].Ip != "192.168.1.11" {
		t.Errorf("expected the line after the panic to be processed, got: %+v", processor.events)
	}
}

func Test_MonitorRun(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	m := newTestMonitor(processor, nil)

	lines := make(chan string, 3)
	lines <- "DHCPACK 192.168.1.10 aa:bb:cc:00:11:22"
	lines <- "DHCPACK 192.168.1.11 aa:bb:cc:00:11:23"
	lines <- "DHCPACK 192.168.1.12 aa:bb:cc:00:11:24"
	close(lines)

	m.Run(context.Background(), lines)

	var ips []string
	for _, ev := range processor.events {
		ips = append(ips, ev.Ip)
	}
	if diff := cmp.Diff([]string{"192.168.1.10", "192.168.1.11", "192.168.1.12"}, ips); diff != "" {
		t.Errorf("expected events in arrival order (-want +got):\n%s", diff)
	}
}
