package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/transcript/internal/cli"
	"github.com/okian/transcript/internal/client/clienttest"
	"github.com/okian/transcript/internal/config"
	"github.com/okian/transcript/internal/model"
	"github.com/okian/transcript/internal/probe"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.MetricsEnabled = false
	return cfg
}

// execute runs one command on a copy of cfg, since flags write through to
// the config they are bound to.
func execute(cfg *config.Config, args ...string) (string, error) {
	c := *cfg
	var out bytes.Buffer
	root := cli.Root(&c, &out, nil)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	Convey("Given a stub backend", t, func() {
		srv := clienttest.NewServer()
		defer srv.Close()
		cfg := testConfig()

		Convey("When showing config before a key is saved", func() {
			out, err := execute(cfg, "--base-url", srv.URL, "config", "get")

			Convey("Then it should render a table without a key", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "has_key")
				So(out, ShouldContainSubstring, "false")
			})
		})

		Convey("When saving a key that is too short", func() {
			_, err := execute(cfg, "--base-url", srv.URL, "config", "save", "--api-key", "short")

			Convey("Then it should be rejected locally", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "api_key must be at least 10 characters")
				So(srv.Requests(), ShouldBeEmpty)
			})
		})

		Convey("When saving a key and reading it back as JSON", func() {
			_, err := execute(cfg, "--base-url", srv.URL, "config", "save", "--api-key", "sk-abcdefgh1234")
			So(err, ShouldBeNil)
			out, err := execute(cfg, "--base-url", srv.URL, "-o", "json", "config", "get")

			Convey("Then the masked key should be shown", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"has_key": true`)
				So(out, ShouldContainSubstring, `"api_key_masked": "sk-a****1234"`)
			})
		})

		Convey("When the backend rejects the key", func() {
			srv.SetKeyCheck(func(string) string { return "invalid api key" })
			_, err := execute(cfg, "--base-url", srv.URL, "config", "save", "--api-key", "sk-abcdefgh1234")

			Convey("Then the backend detail should be the error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "invalid api key")
			})
		})
	})
}

func TestSessionCommands(t *testing.T) {
	Convey("Given a stub backend", t, func() {
		srv := clienttest.NewServer()
		defer srv.Close()
		cfg := testConfig()
		cfg.BaseURL = srv.URL

		Convey("When creating a session without a saved key", func() {
			_, err := execute(cfg, "sessions", "create", "--url", "https://example.com/v/1")

			Convey("Then the backend detail should surface", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "missing api key")
			})
		})

		Convey("When creating a session with an invalid URL", func() {
			_, err := execute(cfg, "sessions", "create", "--url", "not-a-url")

			Convey("Then it should fail validation before any request", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "url must be a valid URL")
				So(srv.Requests(), ShouldBeEmpty)
			})
		})

		Convey("When a key is configured", func() {
			srv.SetAPIKey("sk-abcdefgh1234")
			out, err := execute(cfg, "-o", "json", "sessions", "create", "--url", "https://example.com/v/1", "--style", "brief")
			So(err, ShouldBeNil)

			Convey("Then create should print the new id", func() {
				So(out, ShouldContainSubstring, `"id": 1`)
				req, _ := srv.LastRequest()
				So(string(req.Body), ShouldEqual, `{"url":"https://example.com/v/1","style":"brief"}`)
			})

			Convey("Then list should render the session in a table", func() {
				out, err := execute(cfg, "sessions", "list")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "STATUS")
				So(out, ShouldContainSubstring, "https://example.com/v/1")
				So(out, ShouldContainSubstring, model.StatusPending)
				So(out, ShouldNotContainSubstring, `"items"`)
			})

			Convey("Then list should render YAML", func() {
				out, err := execute(cfg, "-o", "yaml", "sessions", "ls")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "items:")
				So(out, ShouldContainSubstring, "https://example.com/v/1")
			})

			Convey("Then get should show the pipeline steps", func() {
				out, err := execute(cfg, "sessions", "get", "1")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Session 1")
				So(out, ShouldContainSubstring, "STEP")
				So(out, ShouldContainSubstring, model.StageDownload)
				So(out, ShouldContainSubstring, model.StageTranscribe)
				So(out, ShouldContainSubstring, model.StageNote)
			})

			Convey("Then get should show a session that has completed", func() {
				updated := srv.UpdateSession(1, func(s *model.Session, steps []model.Step) {
					s.Status = model.StatusCompleted
					s.Stage = model.StageNote
					for i := range steps {
						steps[i].Status = model.StatusCompleted
						steps[i].Message = "done"
					}
				})
				So(updated, ShouldBeTrue)

				out, err := execute(cfg, "sessions", "get", "1")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, model.StatusCompleted)
				So(out, ShouldContainSubstring, "done")
				So(out, ShouldNotContainSubstring, model.StatusPending)

				out, err = execute(cfg, "-o", "json", "sessions", "get", "1")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"status": "completed"`)
			})

			Convey("Then delete should remove it", func() {
				_, err := execute(cfg, "sessions", "delete", "1")
				So(err, ShouldBeNil)
				req, _ := srv.LastRequest()
				So(req.Method, ShouldEqual, http.MethodDelete)
				So(req.Path, ShouldEqual, "/api/sessions/1")

				out, err := execute(cfg, "-o", "json", "sessions", "list")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"items": []`)

				_, err = execute(cfg, "sessions", "get", "1")
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "not found")
			})
		})

		Convey("When get is called without an id", func() {
			_, err := execute(cfg, "sessions", "get")

			Convey("Then cobra should reject the arguments", func() {
				So(err, ShouldNotBeNil)
				So(srv.Requests(), ShouldBeEmpty)
			})
		})

		Convey("When the output format is unknown", func() {
			_, err := execute(cfg, "-o", "xml", "sessions", "list")

			Convey("Then the config should be rejected", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
				So(srv.Requests(), ShouldBeEmpty)
			})
		})
	})
}

func TestProbeCommand(t *testing.T) {
	Convey("Given the probe command", t, func() {
		cfg := testConfig()

		Convey("When running a self test with creates", func() {
			out, err := execute(cfg, "-o", "json", "probe", "--self-test", "--workers", "2", "--requests", "10", "--create")

			Convey("Then every call should succeed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"submitted": 10`)
				So(out, ShouldContainSubstring, `"succeeded": 10`)
				So(out, ShouldContainSubstring, `"creates": 5`)
			})
		})

		Convey("When every call fails", func() {
			srv := clienttest.NewServer()
			defer srv.Close()
			srv.Respond(http.MethodGet, "/api/sessions", http.StatusInternalServerError, `{"detail":"boom"}`)
			out, err := execute(cfg, "--base-url", srv.URL, "probe", "--workers", "2", "--requests", "4")

			Convey("Then the report should be printed and the run should fail", func() {
				So(errors.Is(err, probe.ErrAllFailed), ShouldBeTrue)
				So(out, ShouldContainSubstring, "failure: boom")
			})
		})

		Convey("When writing metrics to a file", func() {
			cfg.MetricsEnabled = true
			path := filepath.Join(t.TempDir(), "client.prom")
			_, err := execute(cfg, "probe", "--self-test", "--workers", "2", "--requests", "4", "--metrics-file", path)

			Convey("Then the file should hold the client metrics", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "transcript_client_requests_total")
				So(string(data), ShouldContainSubstring, "transcript_client_probe_calls_total")
			})
		})
	})
}
