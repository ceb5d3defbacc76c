package cache

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Key normalizes source URLs", t, func() {
		cases := map[string]string{
			"HTTPS://CDN.Example.com/v.mp4":           "https://cdn.example.com/v.mp4",
			"https://cdn.example.com:443/v.mp4":       "https://cdn.example.com/v.mp4",
			"http://cdn.example.com:80/a/../v.mp4#t=3": "http://cdn.example.com/v.mp4",
			"http://cdn.example.com:8080/v.mp4?q=1":   "http://cdn.example.com:8080/v.mp4?q=1",
			"https://cdn.example.com":                 "https://cdn.example.com/",
			"https://cdn.example.com/dir/":            "https://cdn.example.com/dir/",
			"https://bücher.example/v.mp4":            "https://xn--bcher-kva.example/v.mp4",
			"http://[::1]:80/v.mp4":                   "http://[::1]/v.mp4",
		}

		for raw, want := range cases {
			got, err := Key(raw)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
	})

	Convey("Equivalent spellings share a key", t, func() {
		a, _ := Key("https://CDN.example.com:443/./v.mp4")
		b, _ := Key("https://cdn.example.com/v.mp4#chapter")
		So(a, ShouldEqual, b)
	})

	Convey("Relative and malformed URLs are rejected", t, func() {
		for _, raw := range []string{"v.mp4", "/media/v.mp4", "://nope", ""} {
			_, err := Key(raw)
			So(err, ShouldNotBeNil)
		}
	})
}
