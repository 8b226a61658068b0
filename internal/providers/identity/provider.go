package identity

import (
	"bytes"
	"context"
	"errors"

	"github.com/disintegration/imaging"
)

var ErrUnreadableImage = errors.New("unreadable_image")

// Verdict is the outcome of a face comparison between an identity
// document photo and a selfie.
type Verdict struct {
	Matched    bool    `json:"matched"`
	Similarity float64 `json:"similarity"`
	Detail     string  `json:"detail,omitempty"`
}

type Provider interface {
	CompareFaces(ctx context.Context, documentImage, selfieImage []byte) (*Verdict, error)
}

// LocalProvider accepts any pair of decodable images. It stands in when
// no biometric backend is configured so that environments without the
// vendor credential still exercise the full verification flow.
type LocalProvider struct{}

func (p *LocalProvider) CompareFaces(ctx context.Context, documentImage, selfieImage []byte) (*Verdict, error) {
	for _, img := range [][]byte{documentImage, selfieImage} {
		if _, err := imaging.Decode(bytes.NewReader(img)); err != nil {
			return nil, ErrUnreadableImage
		}
	}
	return &Verdict{Matched: true, Similarity: 1, Detail: "no biometric backend configured"}, nil
}
