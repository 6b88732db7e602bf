package radon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	results map[string][]byte
	errs    map[string]error
}

func (f fakeRetriever) Retrieve(_ context.Context, src Source) ([]byte, error) {
	if err, ok := f.errs[src.URL]; ok {
		return nil, err
	}
	return f.results[src.URL], nil
}

func parseAsString(_ Source, raw []byte) (Value, error) {
	return String(string(raw)), nil
}

func TestRunRetrievalStagePreservesOrderAndInterceptsErrors(t *testing.T) {
	sources := []Source{
		{Kind: SourceHTTPGet, URL: "https://a"},
		{Kind: SourceHTTPGet, URL: "https://b"},
		{Kind: SourceHTTPGet, URL: "https://c"},
	}
	retriever := fakeRetriever{
		results: map[string][]byte{"https://a": []byte("A"), "https://c": []byte("C")},
		errs:    map[string]error{"https://b": httpStatusErr{code: 404}},
	}

	results := RunRetrievalStage(context.Background(), retriever, sources, 2, parseAsString)
	require.Len(t, results, 3)

	for i, r := range results {
		require.Equal(t, i, r.Index)
	}
	require.True(t, results[0].Report.Result.Equal(String("A")))
	require.True(t, results[2].Report.Result.Equal(String("C")))

	require.Equal(t, KindError, results[1].Report.Result.Kind)
	require.Equal(t, ErrHTTPStatus, results[1].Report.Result.Error.Kind)
	require.True(t, results[1].Report.Result.Error.Args[0].Equal(Integer(404)))
}

func TestRunRetrievalStageRNGProducesBytes(t *testing.T) {
	sources := []Source{{Kind: SourceRNG}}
	retriever := &HTTPRetriever{}
	results := RunRetrievalStage(context.Background(), retriever, sources, 0, func(_ Source, raw []byte) (Value, error) {
		return Bytes(raw), nil
	})
	require.Len(t, results, 1)
	require.Equal(t, KindBytes, results[0].Report.Result.Kind)
	require.Len(t, results[0].Report.Result.Bytes, 32)
}

func TestClassifyRetrievalError(t *testing.T) {
	kind, args, ok := ClassifyRetrievalError(httpStatusErr{code: 500})
	require.True(t, ok)
	require.Equal(t, ErrHTTPStatus, kind)
	require.True(t, args[0].Equal(Integer(500)))

	_, _, ok = ClassifyRetrievalError(context.DeadlineExceeded)
	require.False(t, ok)
}
