package framework

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/launchdarkly/testng-adapter/servicedef"
)

// WorkerService is the client side of the worker transport: a service that accepts
// serialized processor factories and runs the tests they describe out of process.
type WorkerService struct {
	baseURL string
	info    servicedef.WorkerServiceInfo
	logger  Logger
}

// WorkerEntity is a test run that we have handed to the worker service.
type WorkerEntity struct {
	resourceURL string
	logger      Logger
}

// NewWorkerService verifies that the worker service is responding by querying its status
// resource, retrying until statusQueryTimeout elapses.
func NewWorkerService(
	baseURL string,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*WorkerService, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if startupOutput == nil {
		startupOutput = ioutil.Discard
	}
	info, err := queryWorkerServiceInfo(baseURL, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	return &WorkerService{baseURL: baseURL, info: info, logger: debugLogger}, nil
}

func (s *WorkerService) Info() servicedef.WorkerServiceInfo {
	return s.info
}

func (s *WorkerService) HasCapability(desired string) bool {
	return containsString(s.info.Capabilities, desired)
}

func queryWorkerServiceInfo(url string, timeout time.Duration, output io.Writer) (servicedef.WorkerServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to worker service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				return servicedef.WorkerServiceInfo{}, fmt.Errorf("worker service returned status code %d", resp.StatusCode)
			}
			respData, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				return servicedef.WorkerServiceInfo{}, err
			}
			if len(respData) == 0 {
				fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
				return servicedef.WorkerServiceInfo{}, nil
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var info servicedef.WorkerServiceInfo
			if err := json.Unmarshal(respData, &info); err != nil {
				return servicedef.WorkerServiceInfo{}, fmt.Errorf("malformed status response from worker service: %s", string(respData))
			}
			return info, nil
		}
		if !time.Now().Before(deadline) {
			return servicedef.WorkerServiceInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

// StopService tells the worker service that it should exit.
func (s *WorkerService) StopService() error {
	req, _ := http.NewRequest("DELETE", s.baseURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
		}
	}
	// It's normal for the request to return an I/O error if the service immediately quit before sending a response
	return nil
}

// Submit hands a processor factory to the worker service. The run is assumed to remain
// active inside the worker service until we explicitly close it.
func (s *WorkerService) Submit(factory WorkerProcessorFactory) (*WorkerEntity, error) {
	processor, err := factory.MarshalJSON()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(servicedef.SubmitParams{
		Framework: factory.FrameworkName(),
		Processor: processor,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Submitting %s run to worker service: %s", factory.FrameworkName(), string(data))
	req, err := http.NewRequest("POST", s.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var message string
		if body, _ := ioutil.ReadAll(resp.Body); len(body) != 0 {
			message = ": " + string(body)
		}
		return nil, fmt.Errorf("unexpected response status %d from worker service%s", resp.StatusCode, message)
	}
	resourceURL := resp.Header.Get("Location")
	if resourceURL == "" {
		return nil, errors.New("worker service did not return a Location header with a resource URL")
	}
	if !strings.HasPrefix(resourceURL, "http:") && !strings.HasPrefix(resourceURL, "https:") {
		resourceURL = strings.TrimSuffix(s.baseURL, "/") + resourceURL
	}

	return &WorkerEntity{resourceURL: resourceURL, logger: s.logger}, nil
}

func (e *WorkerEntity) ResourceURL() string {
	return e.resourceURL
}

// SendCommand sends a command to the running test run.
func (e *WorkerEntity) SendCommand(command string) error {
	data, _ := json.Marshal(servicedef.CommandParams{Command: command})
	e.logger.Printf("Sending command: %s", string(data))
	resp, err := http.DefaultClient.Post(e.resourceURL, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("command returned HTTP status %d", resp.StatusCode)
	}
	return nil
}

// Close tells the worker service to dispose of this run.
func (e *WorkerEntity) Close() error {
	req, err := http.NewRequest("DELETE", e.resourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != 200 && resp.StatusCode != 204 {
		return fmt.Errorf("DELETE request to worker service returned HTTP status %d", resp.StatusCode)
	}
	return nil
}
