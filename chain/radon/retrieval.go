package radon

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SourceKind discriminates a data request's retrieval sources (spec.md
// §4.3 "Stages" / "Retrieval. Per source: HTTP GET/POST or RNG").
type SourceKind uint8

// SourceKind values.
const (
	SourceHTTPGet SourceKind = iota
	SourceHTTPPost
	SourceRNG
)

// Source is one entry of a data request's RAD script retrieval stage: a URL
// (for the two HTTP kinds, plus a request body for SourceHTTPPost), or an
// RNG source with no URL. The script run over the fetched bytes is not part
// of Source; RunRetrievalStage takes it as its parse callback.
type Source struct {
	Kind SourceKind
	URL  string
	Body []byte // request body for SourceHTTPPost
}

// Retriever executes a single Source, producing the raw bytes a script then
// parses. It is an interface so tests can stub network/RNG access without a
// real client; *HTTPRetriever is the production implementation.
type Retriever interface {
	Retrieve(ctx context.Context, src Source) ([]byte, error)
}

// HTTPRetriever executes HTTP and RNG sources with a shared *http.Client.
// No third-party HTTP client library appears anywhere in the retrieved
// pack, so this uses net/http directly (DESIGN.md).
type HTTPRetriever struct {
	Client *http.Client
}

// Retrieve fetches src, returning the raw response bytes (HTTP sources) or
// cryptographically random bytes (RNG source).
func (r *HTTPRetriever) Retrieve(ctx context.Context, src Source) ([]byte, error) {
	switch src.Kind {
	case SourceRNG:
		return randomBytes(32)
	case SourceHTTPGet, SourceHTTPPost:
		return r.fetchHTTP(ctx, src)
	default:
		return nil, errors.Errorf("radon: unknown source kind %d", src.Kind)
	}
}

func (r *HTTPRetriever) fetchHTTP(ctx context.Context, src Source) ([]byte, error) {
	method := http.MethodGet
	var body io.Reader
	if src.Kind == SourceHTTPPost {
		method = http.MethodPost
		body = bytes.NewReader(src.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, src.URL, body)
	if err != nil {
		return nil, errors.Wrap(err, "radon: building retrieval request")
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpStatusErr{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type httpStatusErr struct{ code int }

func (e httpStatusErr) Error() string { return fmt.Sprintf("http status %d", e.code) }

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Wrap(err, "radon: reading RNG source")
	}
	return buf, nil
}

// ClassifyRetrievalError maps a Retriever's error into a precise
// radon ErrorKind, used as the classify callback to Intercept (spec.md §9
// "Radon error discipline"): an HTTP status failure becomes ErrHTTPStatus
// with the status code as its argument. Any other error, including a read
// timeout or a canceled context, returns ok=false and so ends up as
// ErrUnhandledIntercept.
func ClassifyRetrievalError(err error) (ErrorKind, []Value, bool) {
	var hs httpStatusErr
	if errors.As(err, &hs) {
		return ErrHTTPStatus, []Value{Integer(int64(hs.code))}, true
	}
	return 0, nil, false
}

// RetrievalResult pairs one source's outcome with its index, preserving the
// original script-order even though sources run concurrently.
type RetrievalResult struct {
	Index  int
	Report RadonReport
}

// RunRetrievalStage executes every source concurrently on a bounded worker
// pool, the one compute/IO-heavy stage spec.md §5 calls out as deserving
// its own pool ("Radon retrieval tasks are the only compute/IO-heavy
// operations that should run on a dedicated worker pool"). Each source's
// failure is intercepted into a RadonError value rather than aborting the
// whole batch (spec.md §9): one slow or failing source never prevents the
// others' reveals from being produced. parse converts the retrieved bytes
// into a Value (e.g. JSON-parse then apply the source's script); it is
// supplied by the caller since script execution beyond the retrieval fetch
// is out of this file's concern.
func RunRetrievalStage(ctx context.Context, retriever Retriever, sources []Source, maxConcurrency int, parse func(src Source, raw []byte) (Value, error)) []RetrievalResult {
	results := make([]RetrievalResult, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	var sem chan struct{}
	if maxConcurrency > 0 {
		sem = make(chan struct{}, maxConcurrency)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			start := time.Now()
			raw, err := retriever.Retrieve(ctx, src)
			var value Value
			if err == nil {
				value, err = parse(src, raw)
			}
			if err != nil {
				value = Intercept(err, ClassifyRetrievalError)
			}
			results[i] = RetrievalResult{
				Index: i,
				Report: RadonReport{
					Result: value,
					Context: ReportContext{
						Stage:        StageRetrieval,
						StartTime:    start,
						CompleteTime: time.Now(),
					},
				},
			}
			return nil
		})
	}
	// Errors are never returned: every failure is already intercepted into
	// a per-source RadonError value above, matching spec.md §9's "total
	// function" discipline for the whole retrieval stage, not just a
	// single operator.
	_ = g.Wait()
	return results
}
