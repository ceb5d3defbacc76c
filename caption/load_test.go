package caption

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cachedplayer/cachedplayer/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

const srt = `1
00:00:00,000 --> 00:00:02,000
Hello

2
00:00:05,000 --> 00:00:07,500
Two
lines
`

const vtt = `WEBVTT

00:00:01.000 --> 00:00:03.000
From VTT
`

func init() {
	filesystem.SetMemMapFs()
}

func TestFormatOf(t *testing.T) {
	Convey("FormatOf", t, func() {
		So(lo.Must(FormatOf("movie.SRT")), ShouldEqual, SubRip)
		So(lo.Must(FormatOf("https://cdn.example/subs/en.vtt?sig=abc")), ShouldEqual, WebVTT)

		_, err := FormatOf("notes.txt")
		So(err, ShouldNotBeNil)
	})
}

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("SubRip", func() {
			track, err := Parse(strings.NewReader(srt), SubRip)
			So(err, ShouldBeNil)
			So(track.Len(), ShouldEqual, 2)
			So(track.Captions[0].Text, ShouldEqual, "Hello")
			So(track.Captions[1].Number, ShouldEqual, 2)
			So(track.Captions[1].End, ShouldEqual, 7500*time.Millisecond)
			So(track.Captions[1].Text, ShouldEqual, "Two\nlines")
		})

		Convey("WebVTT", func() {
			track, err := Parse(strings.NewReader(vtt), WebVTT)
			So(err, ShouldBeNil)
			So(track.Len(), ShouldEqual, 1)
			So(track.At(2*time.Second, 0).Text, ShouldEqual, "From VTT")
		})

		Convey("Unknown format", func() {
			_, err := Parse(strings.NewReader(srt), Format("ass"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoaders(t *testing.T) {
	Convey("Loaders", t, func() {
		ctx := context.Background()

		Convey("FromFile reads through the filesystem backend", func() {
			lo.Must0(filesystem.API().WriteFile("/subs/en.srt", []byte(srt), 0o644))
			track, err := FromFile("/subs/en.srt")(ctx)
			So(err, ShouldBeNil)
			So(track.Len(), ShouldEqual, 2)
		})

		Convey("FromFile fails for a missing file", func() {
			_, err := FromFile("/subs/missing.srt")(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("FromURL downloads and forwards headers", func() {
			var auth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(vtt))
			}))
			defer srv.Close()

			track, err := From(srv.URL+"/en.vtt", map[string]string{"Authorization": "Bearer t"})(ctx)
			So(err, ShouldBeNil)
			So(track.Len(), ShouldEqual, 1)
			So(auth, ShouldEqual, "Bearer t")
		})

		Convey("FromURL surfaces HTTP failures", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()

			_, err := FromURL(srv.URL+"/en.vtt", nil)(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("Static returns the given track", func() {
			want := &Track{Captions: []Caption{{Text: "x"}}}
			got, err := Static(want)(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		})
	})
}
