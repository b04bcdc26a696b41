// Package camstest provides an in-process fake of the CAMS portal for tests.
package camstest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "ASPSESSIONID"

var filterFields = []string{
	"f_Days", "f_TimeFrom", "f_TimeTo", "f_Campuses",
	"f_Departments", "f_Divisions", "TimeFrom", "TimeTo",
}

type PortalOptions struct {
	Username  string
	Password  string
	AccessKey string
	Terms     []Term
	// Pages holds the offerings of each result page, Pages[0] is page 1.
	Pages [][]Offering
	// FailPage makes the given page respond with a 500.
	FailPage int
	// PageDelay is waited before answering a page POST.
	PageDelay time.Duration
	// FailDelay replaces PageDelay for FailPage when set.
	FailDelay time.Duration
	// LoginResponse overrides the body of a successful login.
	LoginResponse string
}

type Portal struct {
	*httptest.Server

	options PortalOptions

	mutex        sync.Mutex
	sessions     map[string]string
	pagePosts    []PagePost
	logouts      int
	inFlight     int
	maxInFlight  int
	rejectedPost []string
	cancelled    int
}

// PagePost is a page request the portal accepted.
type PagePost struct {
	Page      int
	AccessKey string
	Term      string
}

func NewPortal(options PortalOptions) *Portal {
	p := &Portal{
		options:  options,
		sessions: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login.asp", p.handleTerms)
	mux.HandleFunc("POST /ceProcess.asp", p.handleLogin)
	mux.HandleFunc("GET /cePortalOffering.asp", p.handleFirstPage)
	mux.HandleFunc("POST /cePortalOffering.asp", p.handlePage)
	mux.HandleFunc("GET /logout.asp", p.handleLogout)
	p.Server = httptest.NewServer(mux)

	return p
}

func (p *Portal) handleTerms(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, RenderLoginPage(p.options.Terms))
}

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("op") != "login" ||
		r.PostForm.Get("txtUsername") != p.options.Username ||
		r.PostForm.Get("txtPassword") != p.options.Password {
		fmt.Fprint(w, `({'loginStatus':'false','strError':'Invalid username or password.'})`)
		return
	}

	id := uuid.NewString()
	p.mutex.Lock()
	p.sessions[id] = r.PostForm.Get("term")
	p.mutex.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	body := p.options.LoginResponse
	if body == "" {
		body = `({'loginStatus':'true','strError':'','lastLogin':new Date('01/15/2024 10:00:00 AM')})`
	}
	fmt.Fprint(w, body)
}

func (p *Portal) sessionTerm(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	term, ok := p.sessions[cookie.Value]
	return term, ok
}

func (p *Portal) totalPages() int {
	return max(len(p.options.Pages), 1)
}

func (p *Portal) offerings(page int) []Offering {
	if page-1 < len(p.options.Pages) {
		return p.options.Pages[page-1]
	}
	return nil
}

func (p *Portal) handleFirstPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := p.sessionTerm(r); !ok {
		http.Redirect(w, r, "/login.asp", http.StatusFound)
		return
	}
	if p.options.FailPage == 1 {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, RenderOfferingPage(p.options.AccessKey, 1, p.totalPages(), p.offerings(1)))
}

func (p *Portal) reject(w http.ResponseWriter, reason string) {
	p.mutex.Lock()
	p.rejectedPost = append(p.rejectedPost, reason)
	p.mutex.Unlock()
	http.Error(w, reason, http.StatusBadRequest)
}

func (p *Portal) handlePage(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.inFlight++
	p.maxInFlight = max(p.maxInFlight, p.inFlight)
	p.mutex.Unlock()
	defer func() {
		p.mutex.Lock()
		p.inFlight--
		p.mutex.Unlock()
	}()

	term, ok := p.sessionTerm(r)
	if !ok {
		p.reject(w, "no session")
		return
	}
	err := r.ParseForm()
	if err != nil {
		p.reject(w, err.Error())
		return
	}
	form := r.PostForm
	if form.Get("IsPostBack") != "True" {
		p.reject(w, "not a postback")
		return
	}
	if form.Get("accessKey") != p.options.AccessKey {
		p.reject(w, "wrong access key")
		return
	}
	if form.Get("f_TermCalendarID") != term {
		p.reject(w, "wrong term")
		return
	}
	for _, field := range filterFields {
		if _, ok := form[field]; !ok || form.Get(field) != "" {
			p.reject(w, fmt.Sprintf("filter %s missing or set", field))
			return
		}
	}
	page, err := strconv.Atoi(form.Get("page"))
	if err != nil || page < 2 || page > p.totalPages() {
		p.reject(w, "bad page")
		return
	}

	delay := p.options.PageDelay
	if page == p.options.FailPage && p.options.FailDelay > 0 {
		delay = p.options.FailDelay
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			p.mutex.Lock()
			p.cancelled++
			p.mutex.Unlock()
			return
		}
	}

	p.mutex.Lock()
	p.pagePosts = append(p.pagePosts, PagePost{Page: page, AccessKey: form.Get("accessKey"), Term: term})
	p.mutex.Unlock()

	if page == p.options.FailPage {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, RenderOfferingPage(p.options.AccessKey, page, p.totalPages(), p.offerings(page)))
}

func (p *Portal) handleLogout(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.logouts++
	p.mutex.Unlock()
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		p.mutex.Lock()
		delete(p.sessions, cookie.Value)
		p.mutex.Unlock()
	}
	fmt.Fprint(w, "<html><body>Logged out</body></html>")
}

func (p *Portal) PagePosts() []PagePost {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]PagePost(nil), p.pagePosts...)
}

func (p *Portal) RejectedPosts() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string(nil), p.rejectedPost...)
}

func (p *Portal) Logouts() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.logouts
}

// Cancelled is the number of page POSTs whose client went away while they were
// being delayed.
func (p *Portal) Cancelled() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cancelled
}

func (p *Portal) MaxInFlight() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.maxInFlight
}
