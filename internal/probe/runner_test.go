package probe_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/transcript/internal/client"
	"github.com/okian/transcript/internal/client/clienttest"
	"github.com/okian/transcript/internal/model"
	"github.com/okian/transcript/internal/probe"
	"github.com/okian/transcript/pkg/metrics"
)

type fakeAPI struct {
	lists    int64
	creates  int64
	failList bool
}

func (f *fakeAPI) ListSessions(context.Context) (client.Payload, error) {
	atomic.AddInt64(&f.lists, 1)
	if f.failList {
		return nil, &client.RequestError{StatusCode: 500, Message: "request failed"}
	}
	return client.Payload{"items": []any{}}, nil
}

func (f *fakeAPI) CreateSession(context.Context, any) (client.Payload, error) {
	n := atomic.AddInt64(&f.creates, 1)
	return client.Payload{"id": n}, nil
}

func TestRunner(t *testing.T) {
	Convey("Given a probe runner over a fake API", t, func() {
		api := &fakeAPI{}
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
		r := probe.New(api, probe.WithMetrics(m))
		ctx := context.Background()

		Convey("When running list calls only", func() {
			stats, err := r.Run(ctx, probe.Config{Workers: 3, Requests: 25})

			Convey("Then every call should be submitted and succeed", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 25)
				So(stats.Succeeded, ShouldEqual, 25)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Lists, ShouldEqual, 25)
				So(stats.Creates, ShouldEqual, 0)
				So(atomic.LoadInt64(&api.lists), ShouldEqual, 25)
				So(stats.Duration, ShouldBeGreaterThanOrEqualTo, 0)
			})

			Convey("Then probe metrics should be recorded", func() {
				count, gatherErr := testutil.GatherAndCount(registry, "transcript_client_probe_calls_total")
				So(gatherErr, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When interleaving creates", func() {
			stats, err := r.Run(ctx, probe.Config{Workers: 4, Requests: 10, Create: true, Session: model.SessionInput{URL: "https://example.com"}})

			Convey("Then half of the calls should be creates", func() {
				So(err, ShouldBeNil)
				So(stats.Lists, ShouldEqual, 5)
				So(stats.Creates, ShouldEqual, 5)
			})
		})

		Convey("When every call fails", func() {
			api.failList = true
			stats, err := r.Run(ctx, probe.Config{Workers: 2, Requests: 6})

			Convey("Then the run should report it", func() {
				So(errors.Is(err, probe.ErrAllFailed), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 6)
				So(stats.Failures["request failed"], ShouldEqual, 6)
			})
		})

		Convey("When the config is invalid", func() {
			_, err1 := r.Run(ctx, probe.Config{Workers: 0, Requests: 1})
			_, err2 := r.Run(ctx, probe.Config{Workers: 1, Requests: 1, Create: true})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err1, probe.ErrInvalidConfig), ShouldBeTrue)
				So(errors.Is(err2, probe.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := r.Run(cctx, probe.Config{Workers: 2, Requests: 1000})

			Convey("Then the context error should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestRunnerAgainstStubBackend(t *testing.T) {
	Convey("Given the stub backend and a real client", t, func() {
		srv := clienttest.NewServer()
		defer srv.Close()
		srv.SetAPIKey("sk-abcdefgh1234")
		c := client.New(client.WithBaseURL(srv.URL))

		Convey("When probing with concurrent lists and creates", func() {
			stats, err := probe.New(c).Run(context.Background(), probe.Config{
				Workers:  8,
				Requests: 40,
				Create:   true,
				Session:  model.SessionInput{URL: "https://example.com/v"},
			})

			Convey("Then all calls should resolve independently", func() {
				So(err, ShouldBeNil)
				So(stats.Succeeded, ShouldEqual, 40)

				list, listErr := c.ListSessions(context.Background())
				So(listErr, ShouldBeNil)
				sessions, decodeErr := client.Decode[model.SessionList](list)
				So(decodeErr, ShouldBeNil)
				So(sessions.Items, ShouldHaveLength, 20)
			})
		})
	})
}
