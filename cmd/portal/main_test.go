package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/printnow/portal/pkg/test"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"portal": run,
	}))
}

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"waitforserver": cmdWaitForServer,
			"httpget":       cmdHTTPGet,
			"stopserver":    cmdStopServer,
		},
		Setup: func(e *testscript.Env) error {
			data := filepath.Join(e.WorkDir, "data")
			httpAddr := fmt.Sprintf("localhost:%d", test.RandomPort())
			e.Setenv("PORTAL_DATA_PATH", data)
			e.Setenv("PORTAL_LOG_PATH", filepath.Join(data, "portal.log"))
			e.Setenv("PORTAL_CACHE_DRIVER", "lru")
			e.Setenv("PORTAL_MAIL_DRIVER", "log")
			e.Setenv("PORTAL_TESTRUN", "1")
			e.Setenv("PORTAL_HTTP_LISTEN_ADDR", httpAddr)
			e.Setenv("PORTAL_HTTP_PUBLIC_URL", "http://"+httpAddr)
			e.Setenv("PORTAL_STATS_LISTEN_ADDR", fmt.Sprintf("localhost:%d", test.RandomPort()))
			e.Setenv("HTTP_URL", "http://"+httpAddr)
			return nil
		},
	})
}

func cmdWaitForServer(ts *testscript.TestScript, _ bool, _ []string) {
	url := ts.Getenv("HTTP_URL") + "/livez"
	for i := 0; i < 100; i++ {
		res, err := http.Get(url) //nolint:gosec,noctx
		if err == nil {
			res.Body.Close() //nolint:errcheck
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	ts.Fatalf("server did not start")
}

// httpget PATH STATUS
func cmdHTTPGet(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 2 {
		ts.Fatalf("usage: httpget path status")
	}
	want, err := strconv.Atoi(args[1])
	ts.Check(err)
	res, err := http.Get(ts.Getenv("HTTP_URL") + args[0]) //nolint:gosec,noctx
	ts.Check(err)
	defer res.Body.Close() //nolint:errcheck
	if (res.StatusCode == want) == neg {
		ts.Fatalf("GET %s: got %d, want %d", args[0], res.StatusCode, want)
	}
}

func cmdStopServer(ts *testscript.TestScript, _ bool, _ []string) {
	req, err := http.NewRequest(http.MethodHead, ts.Getenv("HTTP_URL")+"/__stop", nil)
	ts.Check(err)
	res, err := http.DefaultClient.Do(req)
	ts.Check(err)
	res.Body.Close() //nolint:errcheck
}
