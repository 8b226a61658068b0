package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

// HTTPProvider calls an external face-comparison API. The API receives
// both images as a multipart form and answers with a match verdict.
type HTTPProvider struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTP(url, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HTTPProvider) CompareFaces(ctx context.Context, documentImage, selfieImage []byte) (*Verdict, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for name, img := range map[string][]byte{"document": documentImage, "selfie": selfieImage} {
		part, err := w.CreateFormFile(name, name+".jpg")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(img); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}
