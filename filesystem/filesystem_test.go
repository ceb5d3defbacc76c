package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("Use should install an arbitrary backend", func() {
			ro := afero.NewReadOnlyFs(afero.NewMemMapFs())
			Use(ro)
			So(API().Name(), ShouldEqual, ro.Name())
			SetMemMapFs()
		})
	})
}

func TestGacheFs(t *testing.T) {
	Convey("GacheFs writes through the active backend", t, func() {
		SetMemMapFs()
		var fs GacheFs

		So(fs.MkdirAll("/ledger", os.ModePerm), ShouldBeNil)
		f, err := fs.OpenFile("/ledger/state.json", os.O_CREATE|os.O_WRONLY, 0o644)
		So(err, ShouldBeNil)
		_, err = f.Write([]byte("{}"))
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		exists, err := API().Exists("/ledger/state.json")
		So(err, ShouldBeNil)
		So(exists, ShouldBeTrue)
	})
}
