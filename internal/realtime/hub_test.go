package realtime_test

import (
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/observability"
	"github.com/openticket/helpdesk/internal/realtime"
)

func drain(c *realtime.Client) []string {
	var out []string
	for {
		select {
		case payload, ok := <-c.Messages():
			if !ok {
				return out
			}
			out = append(out, string(payload))
		default:
			return out
		}
	}
}

var _ = Describe("Hub", func() {
	var (
		hub         *realtime.Hub
		broadcaster *events.Broadcaster
	)

	BeforeEach(func() {
		hub = realtime.NewHub(events.DefaultGroup, 1024, nil, observability.NewMetrics("test"))
		broadcaster = events.NewBroadcaster(hub, events.DefaultGroup, nil)
	})

	It("delivers one frame to every joined client and none to outsiders", func() {
		a, b := hub.NewClient(), hub.NewClient()
		outsider := hub.NewClient()
		Expect(hub.Join(a)).To(Succeed())
		Expect(hub.Join(b)).To(Succeed())
		Expect(a.State()).To(Equal(realtime.StateJoined))
		Expect(outsider.State()).To(Equal(realtime.StateConnecting))

		broadcaster.Publish(events.CustomMessage("hello", events.SeveritySuccess))

		expected := `{"type":"custom_notification","message":"hello","notification_type":"success"}`
		Expect(drain(a)).To(ConsistOf(MatchJSON(expected)))
		Expect(drain(b)).To(ConsistOf(MatchJSON(expected)))
		Expect(drain(outsider)).To(BeEmpty())
	})

	It("ignores events addressed to another group", func() {
		a := hub.NewClient()
		Expect(hub.Join(a)).To(Succeed())
		Expect(hub.Broadcast(events.Event{Group: "other", Message: events.EchoMessage("x")})).To(Succeed())
		Expect(drain(a)).To(BeEmpty())
	})

	It("gives departed and late clients no frames and no backlog", func() {
		early := hub.NewClient()
		Expect(hub.Join(early)).To(Succeed())
		hub.Leave(early)
		Expect(early.State()).To(Equal(realtime.StateClosed))

		broadcaster.Publish(events.EchoMessage("before"))

		late := hub.NewClient()
		Expect(hub.Join(late)).To(Succeed())
		Expect(drain(early)).To(BeEmpty())
		Expect(drain(late)).To(BeEmpty())

		broadcaster.Publish(events.EchoMessage("after"))
		Expect(drain(late)).To(ConsistOf(MatchJSON(`{"type":"notification","message":"after"}`)))
	})

	It("drops frames for a client whose queue is full without blocking", func() {
		small := realtime.NewHub(events.DefaultGroup, 1, nil, nil)
		c := small.NewClient()
		Expect(small.Join(c)).To(Succeed())

		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			for i := 0; i < 5; i++ {
				Expect(small.Broadcast(events.Event{Group: events.DefaultGroup, Message: events.EchoMessage(fmt.Sprint(i))})).To(Succeed())
			}
		}()
		Eventually(done).Should(BeClosed())
		Expect(drain(c)).To(HaveLen(1))
	})

	It("tolerates leaving twice", func() {
		c := hub.NewClient()
		Expect(hub.Join(c)).To(Succeed())
		hub.Leave(c)
		Expect(func() { hub.Leave(c) }).NotTo(Panic())
		Expect(hub.Size()).To(BeZero())
	})

	It("rejects joins and broadcasts after shutdown", func() {
		c := hub.NewClient()
		Expect(hub.Join(c)).To(Succeed())
		hub.Shutdown()

		Expect(c.State()).To(Equal(realtime.StateClosed))
		Expect(hub.Join(hub.NewClient())).To(MatchError(realtime.ErrHubClosed))
		Expect(hub.Broadcast(events.Event{Group: events.DefaultGroup, Message: events.EchoMessage("x")})).To(MatchError(realtime.ErrHubClosed))
		Expect(func() { broadcaster.Publish(events.EchoMessage("x")) }).NotTo(Panic())
	})

	It("delivers concurrent publishes exactly once to each stable member under churn", func() {
		const publishers = 40
		const members = 6

		stable := make([]*realtime.Client, members)
		for i := range stable {
			stable[i] = hub.NewClient()
			Expect(hub.Join(stable[i])).To(Succeed())
		}

		stop := make(chan struct{})
		var churn sync.WaitGroup
		for i := 0; i < 4; i++ {
			churn.Add(1)
			go func() {
				defer churn.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					c := hub.NewClient()
					if err := hub.Join(c); err == nil {
						time.Sleep(time.Microsecond)
						hub.Leave(c)
					}
				}
			}()
		}

		var wg sync.WaitGroup
		for i := 0; i < publishers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				broadcaster.Publish(events.EchoMessage(fmt.Sprintf("msg-%d", n)))
			}(i)
		}
		wg.Wait()
		close(stop)
		churn.Wait()

		for _, c := range stable {
			frames := drain(c)
			Expect(frames).To(HaveLen(publishers))
			seen := map[string]struct{}{}
			for _, f := range frames {
				seen[f] = struct{}{}
			}
			Expect(seen).To(HaveLen(publishers))
		}
		Expect(hub.Size()).To(Equal(members))
	})
})
