package generator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest marks a request rejected before any work starts.
var ErrInvalidRequest = errors.New("invalid blog request")

// BlogRequest is what the caller asks for. It is never mutated once a run starts.
type BlogRequest struct {
	ContentType    string
	TargetAudience string
	Tone           string
	PointOfView    string
	TargetCountry  string
	Keywords       []string
}

// Validate trims keywords and rejects requests with nothing to search for.
func (r BlogRequest) Validate() (BlogRequest, error) {
	var kws []string
	for _, k := range r.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	if len(kws) == 0 {
		return BlogRequest{}, fmt.Errorf("%w: at least one keyword is required", ErrInvalidRequest)
	}
	r.Keywords = kws
	return r, nil
}

// Section is one subheading with its generated body and optional picture.
type Section struct {
	Heading   string
	Body      string
	ImagePath string
}
