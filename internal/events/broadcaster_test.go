package events_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/api/dto"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/events"
)

type recordingTransport struct {
	events []events.Event
	err    error
	panics bool
}

func (r *recordingTransport) Broadcast(event events.Event) error {
	if r.panics {
		panic("boom")
	}
	r.events = append(r.events, event)
	return r.err
}

var _ = Describe("Broadcaster", func() {
	It("is a silent no-op without a transport", func() {
		b := events.NewBroadcaster(nil, "", nil)
		Expect(func() { b.Publish(events.CustomMessage("hi", "")) }).NotTo(Panic())
		Expect(b.Group()).To(Equal(events.DefaultGroup))
	})

	It("targets the configured group with a fresh event id", func() {
		transport := &recordingTransport{}
		b := events.NewBroadcaster(transport, "ticket_notifications", nil)
		b.Publish(events.CustomMessage("one", events.SeverityWarning))
		b.Publish(events.CustomMessage("two", events.SeverityWarning))

		Expect(transport.events).To(HaveLen(2))
		Expect(transport.events[0].Group).To(Equal("ticket_notifications"))
		Expect(transport.events[0].ID).NotTo(Equal(transport.events[1].ID))
		Expect(*transport.events[1].Message.Message).To(Equal("two"))
	})

	It("swallows transport errors and panics", func() {
		b := events.NewBroadcaster(&recordingTransport{err: errors.New("closed")}, "", nil)
		Expect(func() { b.Publish(events.EchoMessage("x")) }).NotTo(Panic())

		b = events.NewBroadcaster(&recordingTransport{panics: true}, "", nil)
		Expect(func() { b.Publish(events.EchoMessage("x")) }).NotTo(Panic())
	})
})

var _ = Describe("Message frames", func() {
	It("serializes ticket frames with the ticket representation", func() {
		ticket := &domain.Ticket{ID: 7, Title: "T", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedByID: 1}
		frame := events.TicketMessage(events.KindTicketCreated, dto.NewTicketResponse(ticket))
		raw, err := json.Marshal(frame)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("type", "ticket_created"))
		Expect(decoded).NotTo(HaveKey("message"))
		Expect(decoded).NotTo(HaveKey("notification_type"))
		Expect(decoded["ticket"]).To(HaveKeyWithValue("status_display", "Open"))
		Expect(decoded["ticket"]).To(HaveKeyWithValue("priority_display", "High"))
		Expect(decoded["ticket"]).To(HaveKeyWithValue("assigned_to", BeNil()))
	})

	It("defaults custom notifications to info", func() {
		raw, err := json.Marshal(events.CustomMessage("saved", ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"type":"custom_notification","message":"saved","notification_type":"info"}`))
	})

	It("keeps empty echo messages on the wire", func() {
		raw, err := json.Marshal(events.EchoMessage(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"type":"notification","message":""}`))
	})

	DescribeTable("ParseSeverity",
		func(raw string, expected events.Severity, ok bool) {
			got, valid := events.ParseSeverity(raw)
			Expect(valid).To(Equal(ok))
			Expect(got).To(Equal(expected))
		},
		Entry("empty", "", events.SeverityInfo, true),
		Entry("success", "success", events.SeveritySuccess, true),
		Entry("error", "error", events.SeverityError, true),
		Entry("unknown", "fatal", events.Severity(""), false),
	)
})
