package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cachedplayer/cachedplayer/filesystem"
	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager backed by an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("payload"))
		}))
		defer srv.Close()

		clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		m := NewManager("/cache/media", "/cache/ledger.json", 30*24*time.Hour, srv.Client(), clock)
		defer m.Close()

		ctx := context.Background()
		url := srv.URL + "/v.mp4"

		Convey("The first resolve misses and populates", func() {
			So(m.Resolve(ctx, url, nil).UseCached, ShouldBeFalse)
			m.Wait()

			Convey("The second resolve hits", func() {
				res := m.Resolve(ctx, url, nil)
				So(res.UseCached, ShouldBeTrue)
				So(res.Path, ShouldNotBeEmpty)
			})

			Convey("Entries lists it as fresh", func() {
				entries, err := m.Entries()
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Present, ShouldBeTrue)
				So(m.Fresh(entries[0]), ShouldBeTrue)
			})

			Convey("After the ttl it misses again", func() {
				clock.Advance(31 * 24 * time.Hour)
				So(m.Resolve(ctx, url, nil).UseCached, ShouldBeFalse)
				m.Wait()
			})

			Convey("Remove forgets it", func() {
				So(m.Remove(url), ShouldBeNil)
				entries, _ := m.Entries()
				So(entries, ShouldBeEmpty)
			})

			Convey("Clear forgets everything", func() {
				So(m.Clear(), ShouldBeNil)
				entries, _ := m.Entries()
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("Unnormalizable URLs are never cached", func() {
			So(m.Resolve(ctx, "relative/v.mp4", nil), ShouldResemble, Resolution{})
			m.Wait()
			entries, _ := m.Entries()
			So(entries, ShouldBeEmpty)
		})
	})
}
