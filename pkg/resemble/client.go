package resemble

import (
	"app/pkg/tools"

	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

var (
	ErrSynthesisFailed   = errors.New("synthesis failed")
	ErrMalformedResponse = errors.New("malformed provider response")
)

type Config struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	ProjectUUID string `yaml:"project_uuid"`
	VoiceUUID   string `yaml:"voice_uuid"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the voice synthesis provider. It is a plain pass-through:
// no retries, no caching, one request per call.
type Client struct {
	cfg        *Config
	httpClient HTTPClient
}

func New(httpClient HTTPClient, cfg *Config) *Client {
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
	}
}

type Clip struct {
	ID       string `json:"id"`
	AudioSrc string `json:"audio_src"`
}

type clipReq struct {
	Body      string `json:"body"`
	VoiceUUID string `json:"voice_uuid"`
}

type clipResp struct {
	Success bool     `json:"success"`
	Item    *Clip    `json:"item"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func (c *Client) CreateClip(ctx context.Context, text string) (*Clip, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/projects/%s/clips", c.cfg.URL, c.cfg.ProjectUUID)

	respData, err := c.post(ctx, url, &clipReq{
		Body:      text,
		VoiceUUID: c.cfg.VoiceUUID,
	})
	if err != nil {
		return nil, err
	}

	clipResp := &clipResp{}
	if err := json.Unmarshal(respData, &clipResp); err != nil {
		metrics.ClipErrors.WithLabelValues("unmarshal").Inc()
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !clipResp.Success {
		metrics.ClipErrors.WithLabelValues("provider").Inc()
		return nil, fmt.Errorf("%w: %s", ErrSynthesisFailed, clipResp.Message)
	}

	if clipResp.Item == nil || clipResp.Item.AudioSrc == "" {
		metrics.ClipErrors.WithLabelValues("no_audio_src").Inc()
		return nil, fmt.Errorf("%w: no audio location in response", ErrMalformedResponse)
	}

	metrics.ClipQueryTime.Observe(time.Since(start).Seconds())

	return clipResp.Item, nil
}

type Voice struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type voiceReq struct {
	Name       string `json:"name"`
	DatasetURL string `json:"dataset_url"`
}

type voiceResp struct {
	Success bool   `json:"success"`
	Item    *Voice `json:"item"`
	Message string `json:"message"`
}

// CreateVoice requests training of a custom voice from an uploaded dataset.
func (c *Client) CreateVoice(ctx context.Context, name, datasetURL string) (*Voice, error) {
	respData, err := c.post(ctx, c.cfg.URL+"/voices", &voiceReq{
		Name:       name,
		DatasetURL: datasetURL,
	})
	if err != nil {
		return nil, err
	}

	voiceResp := &voiceResp{}
	if err := json.Unmarshal(respData, &voiceResp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !voiceResp.Success || voiceResp.Item == nil {
		return nil, fmt.Errorf("%w: %s", ErrSynthesisFailed, voiceResp.Message)
	}

	return voiceResp.Item, nil
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Add("Content-Type", "application/json")
	request.Header.Add("Authorization", "Token token="+c.cfg.Token)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		metrics.ClipErrors.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	defer tools.DrainAndClose(resp.Body)

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if resp.StatusCode > 299 {
		metrics.ClipErrors.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		return nil, fmt.Errorf("%w: status code %d, err - %s", ErrSynthesisFailed, resp.StatusCode, string(respData))
	}

	return respData, nil
}
