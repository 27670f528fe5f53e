package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/transly/internal/quota"
	"github.com/valpere/transly/internal/translator"
)

type call struct {
	req   translator.TranslateRequest
	start time.Time
}

type fakeService struct {
	mu       sync.Mutex
	calls    []call
	failOn   int // 1-based call number that fails; 0 never
	onCall   func(n int)
	response func(req translator.TranslateRequest) string
}

func (f *fakeService) Name() string { return "fake" }

func (f *fakeService) Translate(ctx context.Context, req translator.TranslateRequest) (*translator.ServiceResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{req: req, start: time.Now()})
	n := len(f.calls)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(n)
	}
	if f.failOn == n {
		return &translator.ServiceResult{ServiceName: "fake", Error: "boom"}, errors.New("backend returned 500: boom")
	}

	out := "T(" + req.Text + ")"
	if f.response != nil {
		out = f.response(req)
	}
	return &translator.ServiceResult{ServiceName: "fake", TranslatedText: out}, nil
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type countingQuota struct {
	remaining int
	calls     int
}

func (q *countingQuota) RemainingCharacters(context.Context) (int, error) {
	q.calls++
	return q.remaining, nil
}

type fakeDetector struct{ code string }

func (d fakeDetector) DetectISO(string) (string, bool) { return d.code, d.code != "" }

// longText builds n sentences of exactly 99 code points separated by spaces.
func longText(n int) string {
	sentence := strings.Repeat("word ", 19) + "end."
	parts := make([]string, n)
	for i := range parts {
		parts[i] = sentence
	}
	return strings.Join(parts, " ")
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = time.Millisecond
	return cfg
}

func TestTranslate_ShortTextSingleCall(t *testing.T) {
	svc := &fakeService{response: func(translator.TranslateRequest) string { return "  Hola, mundo!  " }}
	tr := New(svc, quota.Unlimited, fastConfig())

	var progress []int
	res, err := tr.Translate(context.Background(), "Hello, world!", "en", "es", func(p int) { progress = append(progress, p) })

	require.NoError(t, err)
	assert.Equal(t, 1, svc.count())
	assert.Equal(t, "  Hola, mundo!  ", res.TranslatedText)
	assert.Equal(t, 13, res.CharactersTranslated)
	assert.Equal(t, "en", res.SourceLang)
	assert.Equal(t, "es", res.TargetLang)
	assert.Equal(t, []int{100}, progress)
}

func TestTranslate_DirectLimitBoundary(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, nil, fastConfig())

	text := strings.Repeat("a", DefaultDirectLimit)
	_, err := tr.Translate(context.Background(), text, "en", "de", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.count())
	assert.Equal(t, text, svc.calls[0].req.Text)
}

func TestTranslate_LongTextChunkedInOrder(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())

	text := longText(31) // 3099 code points
	res, err := tr.Translate(context.Background(), text, "en", "fr", nil)
	require.NoError(t, err)

	require.Equal(t, 3, svc.count())
	assert.Equal(t, 3, res.Chunks)

	var sent []string
	for _, c := range svc.calls {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.req.Text), 1500)
		assert.Equal(t, "en", c.req.SourceLang)
		assert.Equal(t, "fr", c.req.TargetLang)
		sent = append(sent, c.req.Text)
	}
	assert.Equal(t, text, strings.Join(sent, " "))

	want := make([]string, len(sent))
	for i, s := range sent {
		want[i] = "T(" + s + ")"
	}
	assert.Equal(t, strings.Join(want, " "), res.TranslatedText)
	assert.Equal(t, utf8.RuneCountInString(text), res.CharactersTranslated)
}

func TestTranslate_CharactersTranslatedCountsCodePoints(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())

	text := strings.Repeat("Привіт світ. ", 120) // 1560 code points, more bytes
	res, err := tr.Translate(context.Background(), text, "uk", "en", nil)
	require.NoError(t, err)
	assert.Equal(t, utf8.RuneCountInString(text), res.CharactersTranslated)
	assert.GreaterOrEqual(t, svc.count(), 2)
}

func TestTranslate_PacesChunkCalls(t *testing.T) {
	const interval = 30 * time.Millisecond
	svc := &fakeService{}
	cfg := DefaultConfig()
	cfg.Interval = interval
	tr := New(svc, quota.Unlimited, cfg)

	start := time.Now()
	_, err := tr.Translate(context.Background(), longText(31), "en", "fr", nil)
	require.NoError(t, err)
	elapsed := time.Since(start)

	require.Equal(t, 3, svc.count())
	for i := 1; i < len(svc.calls); i++ {
		gap := svc.calls[i].start.Sub(svc.calls[i-1].start)
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "gap before call %d", i+1)
	}
	// Two pauses for three calls; nothing waits after the last one.
	assert.Less(t, elapsed, 3*interval+200*time.Millisecond)
}

func TestTranslate_QuotaExceededBeforeAnyCall(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Static(500), fastConfig())

	_, err := tr.Translate(context.Background(), strings.Repeat("x", 600), "en", "de", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, quota.ErrExceeded))

	var qe *quota.ExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 500, qe.Remaining)
	assert.Equal(t, 0, svc.count())
}

func TestTranslate_ChunkFailureAborts(t *testing.T) {
	svc := &fakeService{failOn: 2}
	tr := New(svc, quota.Unlimited, fastConfig())

	var progress []int
	res, err := tr.Translate(context.Background(), longText(31), "en", "fr", func(p int) { progress = append(progress, p) })

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "chunk 2/3")
	assert.Equal(t, 2, svc.count())
	for _, p := range progress {
		assert.Less(t, p, 100)
	}
}

func TestTranslate_ProgressMonotonicEndsAt100(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())

	var progress []int
	_, err := tr.Translate(context.Background(), longText(60), "en", "fr", func(p int) { progress = append(progress, p) })
	require.NoError(t, err)

	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	for _, p := range progress[:len(progress)-1] {
		assert.LessOrEqual(t, p, 99)
	}
	assert.Equal(t, 100, progress[len(progress)-1])
	// splitting reports something before the first chunk completes
	assert.LessOrEqual(t, progress[0], splitShare)
}

func TestTranslate_EmptyTextIsNoop(t *testing.T) {
	for _, text := range []string{"", "   \n\t"} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			svc := &fakeService{}
			q := &countingQuota{remaining: 0}
			tr := New(svc, q, fastConfig())

			var progress []int
			res, err := tr.Translate(context.Background(), text, "en", "fr", func(p int) { progress = append(progress, p) })
			require.NoError(t, err)
			assert.Equal(t, "", res.TranslatedText)
			assert.Equal(t, 0, svc.count())
			assert.Equal(t, 0, q.calls)
			assert.Equal(t, []int{100}, progress)
		})
	}
}

func TestTranslate_OversizedSentenceSentWhole(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())

	long := strings.Repeat("x", 2000) + "."
	text := "Intro sentence. " + long + " Outro sentence."
	_, err := tr.Translate(context.Background(), text, "en", "fr", nil)
	require.NoError(t, err)

	require.Equal(t, 3, svc.count())
	assert.Equal(t, long, svc.calls[1].req.Text)
}

func TestTranslate_HardSplit(t *testing.T) {
	svc := &fakeService{}
	cfg := fastConfig()
	cfg.HardSplit = true
	tr := New(svc, quota.Unlimited, cfg)

	text := strings.Repeat("word ", 700) // no sentence ends
	_, err := tr.Translate(context.Background(), text, "en", "fr", nil)
	require.NoError(t, err)

	require.GreaterOrEqual(t, svc.count(), 3)
	for _, c := range svc.calls {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.req.Text), 1500)
	}
}

func TestTranslate_DetectorResolvesAuto(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())
	tr.SetDetector(fakeDetector{code: "fr"})

	res, err := tr.Translate(context.Background(), longText(20), "auto", "en", nil)
	require.NoError(t, err)
	assert.Equal(t, "fr", res.SourceLang)
	for _, c := range svc.calls {
		assert.Equal(t, "fr", c.req.SourceLang)
	}
}

func TestTranslate_AutoWithoutDetection(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())
	tr.SetDetector(fakeDetector{})

	_, err := tr.Translate(context.Background(), "Bonjour", "auto", "en", nil)
	require.NoError(t, err)
	assert.Equal(t, "auto", svc.calls[0].req.SourceLang)
}

func TestTranslate_InvalidLanguage(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())

	_, err := tr.Translate(context.Background(), "Hello", "en", "", nil)
	assert.Error(t, err)

	_, err = tr.Translate(context.Background(), "Hello", "not a tag!", "fr", nil)
	assert.Error(t, err)
	assert.Equal(t, 0, svc.count())
}

func TestTranslate_CancelStopsPipeline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &fakeService{onCall: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	cfg := DefaultConfig()
	cfg.Interval = time.Second
	tr := New(svc, quota.Unlimited, cfg)

	_, err := tr.Translate(ctx, longText(31), "en", "fr", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, svc.count())
}

func TestProgress_NilCallback(t *testing.T) {
	p := newProgress(nil)
	p.report(50)
	p.split(1, 2)
	p.translated(1, 2)
	p.done()
}

func TestProgress_Clamps(t *testing.T) {
	var got []int
	p := newProgress(func(v int) { got = append(got, v) })
	p.report(40)
	p.report(30)
	p.report(40)
	p.report(150)
	p.translated(3, 3)
	p.done()
	assert.Equal(t, []int{40, 99, 100}, got)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1000, cfg.DirectLimit)
	assert.Equal(t, 1500, cfg.MaxChars)
	assert.Equal(t, 300*time.Millisecond, cfg.Interval)
	assert.False(t, cfg.HardSplit)
}

type fakeVerifier struct {
	err    error
	called int
}

func (v *fakeVerifier) Verify(string, string) error {
	v.called++
	return v.err
}

func TestTranslate_VerifierWarningKeepsResult(t *testing.T) {
	svc := &fakeService{}
	tr := New(svc, quota.Unlimited, fastConfig())
	ver := &fakeVerifier{err: errors.New("expected de but detected en")}
	tr.SetVerifier(ver)

	var progress []int
	res, err := tr.Translate(context.Background(), longText(20), "en", "de", func(p int) { progress = append(progress, p) })
	require.NoError(t, err)
	assert.Equal(t, 1, ver.called)
	assert.Equal(t, []string{"expected de but detected en"}, res.Warnings)
	assert.NotEmpty(t, res.TranslatedText)
	assert.Equal(t, 100, progress[len(progress)-1])
}

func TestTranslate_VerifierNotCalledOnFailure(t *testing.T) {
	svc := &fakeService{failOn: 1}
	tr := New(svc, quota.Unlimited, fastConfig())
	ver := &fakeVerifier{}
	tr.SetVerifier(ver)

	_, err := tr.Translate(context.Background(), "Hello", "en", "de", nil)
	require.Error(t, err)
	assert.Equal(t, 0, ver.called)
}

func TestTranslate_SlowCallsAreNotPausedAgain(t *testing.T) {
	const interval = 50 * time.Millisecond
	svc := &fakeService{onCall: func(int) { time.Sleep(2 * interval) }}
	cfg := DefaultConfig()
	cfg.Interval = interval
	tr := New(svc, quota.Unlimited, cfg)

	start := time.Now()
	_, err := tr.Translate(context.Background(), longText(31), "en", "fr", nil)
	require.NoError(t, err)
	elapsed := time.Since(start)

	require.Equal(t, 3, svc.count())
	for i := 1; i < len(svc.calls); i++ {
		gap := svc.calls[i].start.Sub(svc.calls[i-1].start)
		assert.GreaterOrEqual(t, gap, 2*interval)
	}
	// Three calls of 2*interval each take 6*interval; pausing after each
	// completed call would add two more intervals.
	assert.Less(t, elapsed, 7*interval)
}
