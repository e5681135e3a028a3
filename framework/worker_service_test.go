package framework

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/testng-adapter/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessorFactory struct {
	Value string `json:"value"`
}

func (f fakeProcessorFactory) FrameworkName() string { return "fake" }

func (f fakeProcessorFactory) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"value": f.Value})
}

func byMethod(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.Method]; ok {
			h.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func TestWorkerServiceStatusQuery(t *testing.T) {
	status := httphelpers.HandlerWithResponse(200, nil,
		[]byte(`{"description":"fake worker","capabilities":["testng","junit"]}`))

	httphelpers.WithServer(status, func(server *httptest.Server) {
		s, err := NewWorkerService(server.URL, time.Second, nil, ioutil.Discard)
		require.NoError(t, err)
		assert.Equal(t, "fake worker", s.Info().Description)
		assert.True(t, s.HasCapability("testng"))
		assert.False(t, s.HasCapability("spock"))
	})
}

func TestWorkerServiceStatusQueryErrors(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(503), func(server *httptest.Server) {
		_, err := NewWorkerService(server.URL, time.Second, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	httphelpers.WithServer(httphelpers.HandlerWithResponse(200, nil, []byte("not json")), func(server *httptest.Server) {
		_, err := NewWorkerService(server.URL, time.Second, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed status response")
	})

	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		s, err := NewWorkerService(server.URL, time.Second, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, servicedef.WorkerServiceInfo{}, s.Info())
	})
}

func TestWorkerServiceTimesOut(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	_, err := NewWorkerService(url, time.Millisecond*200, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestWorkerServiceSubmitAndClose(t *testing.T) {
	created := httphelpers.HandlerWithResponse(201, http.Header{"Location": []string{"/runs/1"}}, nil)
	postHandler, posts := httphelpers.RecordingHandler(created)
	deleteHandler, deletes := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	handler := byMethod(map[string]http.Handler{
		"GET":    httphelpers.HandlerWithResponse(200, nil, []byte(`{}`)),
		"POST":   postHandler,
		"DELETE": deleteHandler,
	})

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s, err := NewWorkerService(server.URL, time.Second, nil, nil)
		require.NoError(t, err)

		entity, err := s.Submit(fakeProcessorFactory{Value: "x"})
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/runs/1", entity.ResourceURL())

		post := <-posts
		assert.Equal(t, "application/json", post.Request.Header.Get("Content-Type"))
		var params servicedef.SubmitParams
		require.NoError(t, json.Unmarshal(post.Body, &params))
		assert.Equal(t, "fake", params.Framework)
		assert.JSONEq(t, `{"value":"x"}`, string(params.Processor))

		require.NoError(t, entity.Close())
		del := <-deletes
		assert.Equal(t, "/runs/1", del.Request.URL.Path)
	})
}

func TestWorkerServiceSubmitErrors(t *testing.T) {
	handler := byMethod(map[string]http.Handler{
		"GET":  httphelpers.HandlerWithStatus(200),
		"POST": httphelpers.HandlerWithResponse(400, nil, []byte("bad spec")),
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s, err := NewWorkerService(server.URL, time.Second, nil, nil)
		require.NoError(t, err)
		_, err = s.Submit(fakeProcessorFactory{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected response status 400 from worker service: bad spec")
	})

	handler = byMethod(map[string]http.Handler{
		"GET":  httphelpers.HandlerWithStatus(200),
		"POST": httphelpers.HandlerWithStatus(201),
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s, err := NewWorkerService(server.URL, time.Second, nil, nil)
		require.NoError(t, err)
		_, err = s.Submit(fakeProcessorFactory{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Location header")
	})
}

func TestWorkerEntityCommand(t *testing.T) {
	commandHandler, commands := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(202))
	httphelpers.WithServer(commandHandler, func(server *httptest.Server) {
		e := &WorkerEntity{resourceURL: server.URL + "/runs/2", logger: NullLogger()}
		require.NoError(t, e.SendCommand(servicedef.CommandCancel))
		cmd := <-commands
		assert.JSONEq(t, `{"command":"cancel"}`, string(cmd.Body))
	})
}

func TestStopService(t *testing.T) {
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		s := &WorkerService{baseURL: server.URL, logger: NullLogger()}
		require.NoError(t, s.StopService())
		assert.Equal(t, "DELETE", (<-requests).Request.Method)
	})
}
