package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go-jobpost-scraper/internal/browser"
	"go-jobpost-scraper/internal/config"
	"go-jobpost-scraper/internal/models"
	"go-jobpost-scraper/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobURL = "https://www.linkedin.com/jobs/view/4000000001"

// fakeSession is a scripted page. Elements are keyed by selector.
type fakeSession struct {
	texts       map[string]string
	collapsed   string
	expanded    string
	waitErr     error
	navErr      error
	panicOn     string
	activated   bool
	scrolled    bool
	closeCalls  int
	waitTimeout time.Duration
	shots       []string
}

func (f *fakeSession) Navigate(string) error { return f.navErr }

func (f *fakeSession) WaitFor(_ string, timeout time.Duration) error {
	f.waitTimeout = timeout
	return f.waitErr
}

func (f *fakeSession) FindOne(selectors ...string) (browser.Element, error) {
	for _, sel := range selectors {
		if sel == f.panicOn {
			panic("driver connection lost")
		}
		if sel == showMoreSelector && f.expanded != "" {
			return &fakeElement{session: f}, nil
		}
		if sel == descriptionSelector && (f.collapsed != "" || f.expanded != "") {
			return &fakeElement{session: f, description: true}, nil
		}
		if text, ok := f.texts[sel]; ok {
			return &fakeElement{session: f, text: text}, nil
		}
	}
	return nil, browser.ErrNotFound
}

func (f *fakeSession) ScrollToBottom() error {
	f.scrolled = true
	return nil
}

func (f *fakeSession) Screenshot(path string) error {
	f.shots = append(f.shots, path)
	return nil
}

func (f *fakeSession) Close() error {
	f.closeCalls++
	return nil
}

type fakeElement struct {
	session     *fakeSession
	text        string
	description bool
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) RenderedText() (string, error) {
	if !e.description {
		return e.text, nil
	}
	if e.session.activated && e.session.expanded != "" {
		return e.session.expanded, nil
	}
	return e.session.collapsed, nil
}

func (e *fakeElement) Activate() error {
	e.session.activated = true
	return nil
}

type fakeOpener struct {
	session *fakeSession
	err     error
	opened  int
}

func (o *fakeOpener) Open(context.Context) (browser.Session, error) {
	o.opened++
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func newTestExtractor(opener browser.Opener) (*Extractor, *[]time.Duration) {
	var pauses []time.Duration
	e := NewExtractor(opener, nil)
	e.Sleep = func(d time.Duration) { pauses = append(pauses, d) }
	e.Dump = nil
	return e, &pauses
}

func TestExtract_StaticFixture(t *testing.T) {
	opener, err := browser.NewStaticOpenerFromFile("testdata/job_posting.html")
	require.NoError(t, err)
	e, pauses := newTestExtractor(opener)

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.JobRecord{
		URL:            jobURL,
		Title:          "Senior Go Engineer",
		Company:        "Acme GmbH",
		Location:       "Berlin, Germany",
		Posted:         "2 weeks ago",
		Applicants:     "Over 200 applicants",
		JobDescription: "About the role\nYou will build data pipelines in Go.\nDesign services\nRun them in production\nBenefits:\nRemote friendly",
	}, rec)
	assert.True(t, rec.IsComplete())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *pauses)
}

func TestExtract_BlankPage(t *testing.T) {
	e, _ := newTestExtractor(browser.NewStaticOpener([]byte("<html><body></body></html>")))

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.NewJobRecord(jobURL), rec)
	assert.Len(t, rec.Fields(), 7)
}

func TestExtract_ReadinessTimeout(t *testing.T) {
	s := &fakeSession{waitErr: browser.ErrTimeout}
	e, _ := newTestExtractor(&fakeOpener{session: s})

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.NewJobRecord(jobURL), rec)
	assert.Equal(t, 20*time.Second, s.waitTimeout)
	assert.Equal(t, 1, s.closeCalls)
}

func TestExtract_ReadinessTimeoutStillReadsFields(t *testing.T) {
	s := &fakeSession{
		waitErr: browser.ErrTimeout,
		texts:   map[string]string{"h1": "Late Title"},
	}
	e, _ := newTestExtractor(&fakeOpener{session: s})

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, "Late Title", rec.Title)
}

func TestExtract_WithoutShowMore(t *testing.T) {
	s := &fakeSession{collapsed: "  Full description\nsecond line  "}
	e, pauses := newTestExtractor(&fakeOpener{session: s})

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, "Full description\nsecond line", rec.JobDescription)
	assert.False(t, s.activated)
	assert.True(t, s.scrolled)
	assert.Len(t, *pauses, 1)
}

func TestExtract_ShowMoreExpandsDescription(t *testing.T) {
	s := &fakeSession{collapsed: "Short…", expanded: "Short and\r\nthe rest"}
	e, pauses := newTestExtractor(&fakeOpener{session: s})

	rec := e.Extract(context.Background(), jobURL)

	assert.True(t, s.activated)
	assert.Equal(t, "Short and\nthe rest", rec.JobDescription)
	assert.Len(t, *pauses, 2)
}

func TestExtract_SettlePausesIgnoreCancellation(t *testing.T) {
	s := &fakeSession{collapsed: "Short…", expanded: "Short and the rest"}
	e := NewExtractor(&fakeOpener{session: s}, nil)
	e.Dump = nil
	e.SettleDelay = 30 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	rec := e.ExtractPage(ctx, s, jobURL)

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	assert.Equal(t, "Short and the rest", rec.JobDescription)
}

func TestExtract_SelectorPriority(t *testing.T) {
	tests := []struct {
		name        string
		texts       map[string]string
		wantTitle   string
		wantCompany string
	}{
		{
			name:        "first rule wins",
			texts:       map[string]string{"h1": "From H1", ".top-card-layout__title": "From Card", ".topcard__org-name-link": "Link Co", ".topcard__flavor": "Flavor Co"},
			wantTitle:   "From H1",
			wantCompany: "Link Co",
		},
		{
			name:        "fallbacks",
			texts:       map[string]string{".job-details-jobs-unified-top-card__job-title": "Unified", ".job-details-jobs-unified-top-card__company-name": "Unified Co"},
			wantTitle:   "Unified",
			wantCompany: "Unified Co",
		},
		{
			name:        "whitespace only is a miss",
			texts:       map[string]string{"h1": "   ", ".topcard__flavor": "\n Flavor Co \n"},
			wantTitle:   "",
			wantCompany: "Flavor Co",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExtractor(&fakeOpener{session: &fakeSession{texts: tt.texts}})

			rec := e.Extract(context.Background(), jobURL)

			assert.Equal(t, tt.wantTitle, rec.Title)
			assert.Equal(t, tt.wantCompany, rec.Company)
		})
	}
}

func TestExtract_PanicKeepsPartialRecord(t *testing.T) {
	s := &fakeSession{
		texts: map[string]string{
			"h1":                       "Engineer",
			".topcard__org-name-link":  "Acme",
			".topcard__flavor--bullet": "Remote",
		},
		panicOn: ".posted-time-ago__text",
	}
	e, _ := newTestExtractor(&fakeOpener{session: s})

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.JobRecord{URL: jobURL, Title: "Engineer", Company: "Acme", Location: "Remote"}, rec)
	assert.Equal(t, 1, s.closeCalls)
}

func TestExtract_NavigationFailure(t *testing.T) {
	s := &fakeSession{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED"), texts: map[string]string{"h1": "never read"}}
	e, _ := newTestExtractor(&fakeOpener{session: s})

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.NewJobRecord(jobURL), rec)
	assert.Equal(t, 1, s.closeCalls)
}

func TestExtract_OpenFailure(t *testing.T) {
	opener := &fakeOpener{err: errors.New("browser crashed")}
	e, _ := newTestExtractor(opener)

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.NewJobRecord(jobURL), rec)
	assert.Equal(t, 1, opener.opened)
}

func TestExtract_DumpsJSON(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newTestExtractor(&fakeOpener{session: &fakeSession{texts: map[string]string{"h1": "Engineer"}}})
	e.Dump = &buf

	rec := e.Extract(context.Background(), jobURL)

	var decoded models.JobRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rec, decoded)
	assert.Contains(t, buf.String(), "\n  \"title\": \"Engineer\",\n")
}

func TestExtract_ScreenshotOnTimeout(t *testing.T) {
	dir := t.TempDir()
	s := &fakeSession{waitErr: browser.ErrTimeout}
	e, _ := newTestExtractor(&fakeOpener{session: s})
	e.Screenshots = utils.NewScreenShotDebugger(dir)

	rec := e.Extract(context.Background(), jobURL)

	assert.Equal(t, models.NewJobRecord(jobURL), rec)
	require.Len(t, s.shots, 1)
	assert.Equal(t, dir, filepath.Dir(s.shots[0]))
}

func TestNewExtractor_Config(t *testing.T) {
	cfg := config.Default()
	cfg.Extraction.ReadinessTimeoutMS = 5000
	cfg.Extraction.SettleDelayMS = 0
	cfg.Extraction.ScreenshotsDir = t.TempDir()

	e := NewExtractor(&fakeOpener{}, cfg)

	assert.Equal(t, 5*time.Second, e.ReadinessTimeout)
	assert.Zero(t, e.SettleDelay)
	assert.NotNil(t, e.Screenshots)
	assert.Nil(t, NewExtractor(&fakeOpener{}, nil).Screenshots)
}

func TestName(t *testing.T) {
	assert.Equal(t, "LinkedIn", NewExtractor(nil, nil).Name())
}
