package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/launchdarkly/testng-adapter/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeTestNG = `package testng

type TestNG struct{}

func (t *TestNG) SetPreserveOrder(preserve bool) {}
`

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadParams(t *testing.T) {
	var p commandParams
	ok := p.Read([]string{"cmd",
		"-classpath", "a" + string(os.PathListSeparator) + "b",
		"-classpath", "c",
		"-run", "x",
		"-probe-all",
		"-cancel",
	})
	require.True(t, ok)
	assert.Equal(t, pathList{"a", "b", "c"}, p.classpath)
	assert.Equal(t, ":test", p.taskPath)
	assert.True(t, p.filters.MustMatch.IsDefined())
	assert.True(t, p.probeAll)
	assert.True(t, p.cancelRun)
}

func TestReadParamsRequiresClasspath(t *testing.T) {
	var p commandParams
	assert.False(t, p.Read([]string{"cmd"}))
}

func TestCommandBuilderQuotes(t *testing.T) {
	var b commandBuilder
	b.add("testng-worker", "-processor", "/tmp/with space/processor.json")
	assert.Equal(t, `testng-worker -processor '/tmp/with space/processor.json'`, b.String())
}

func TestRunWritesProcessor(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(lib, "testng", "testng.go"), fakeTestNG)
	config := filepath.Join(dir, "testng.yaml")
	writeFile(t, config, "preserve_order: true\ninclude_groups: [fast]\n")
	tmp := filepath.Join(dir, "tmp")

	code := run(commandParams{
		taskPath:   ":test",
		classpath:  pathList{lib},
		configFile: config,
		tempDir:    tmp,
		reportDir:  "/reports/html",
		probeAll:   true,
	})
	require.Equal(t, 0, code)

	matches, err := filepath.Glob(filepath.Join(tmp, "*", processorFileName))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var params servicedef.ProcessorParams
	require.NoError(t, json.Unmarshal(data, &params))
	assert.Equal(t, "/reports/html", params.OutputDirectory)
	assert.True(t, params.Spec.PreserveOrder)
	assert.Equal(t, []string{"fast"}, params.Spec.IncludeGroups)
}

func TestRunRejectsUnsupportedFeature(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(lib, "testng", "testng.go"), fakeTestNG)
	config := filepath.Join(dir, "testng.toml")
	writeFile(t, config, "group_by_instances = true\n")

	code := run(commandParams{
		classpath:  pathList{lib},
		configFile: config,
		tempDir:    filepath.Join(dir, "tmp"),
	})
	assert.Equal(t, 1, code)
}

func TestRunSubmitsToWorkerService(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(lib, "testng", "testng.go"), fakeTestNG)

	postHandler, posts := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(201, http.Header{"Location": []string{"/runs/7"}}, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			_, _ = w.Write([]byte(`{"description":"worker","capabilities":["testng"]}`))
		case "POST":
			postHandler.ServeHTTP(w, r)
		default:
			w.WriteHeader(204)
		}
	})

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		code := run(commandParams{
			classpath: pathList{lib},
			tempDir:   filepath.Join(dir, "tmp"),
			workerURL: server.URL,
		})
		require.Equal(t, 0, code)

		post := <-posts
		var submitted servicedef.SubmitParams
		require.NoError(t, json.Unmarshal(post.Body, &submitted))
		assert.Equal(t, "testng", submitted.Framework)
	})
}

func TestRunCancelsSubmittedRun(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(lib, "testng", "testng.go"), fakeTestNG)

	runHandler, runRequests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	mux := http.NewServeMux()
	mux.Handle("/runs/7", runHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			_, _ = w.Write([]byte(`{"description":"worker","capabilities":["testng"]}`))
		case "POST":
			w.Header().Set("Location", "/runs/7")
			w.WriteHeader(201)
		default:
			w.WriteHeader(204)
		}
	})

	httphelpers.WithServer(mux, func(server *httptest.Server) {
		code := run(commandParams{
			classpath: pathList{lib},
			tempDir:   filepath.Join(dir, "tmp"),
			workerURL: server.URL,
			cancelRun: true,
		})
		require.Equal(t, 0, code)

		cancel := <-runRequests
		assert.Equal(t, "POST", cancel.Request.Method)
		assert.JSONEq(t, `{"command":"cancel"}`, string(cancel.Body))
		discard := <-runRequests
		assert.Equal(t, "DELETE", discard.Request.Method)
	})
}
