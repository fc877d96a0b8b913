package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/gjson"
)

type spiderResponse struct {
	ResultData any  `json:"result_data"`
	IsUnpacked bool `json:"is_unpacked"`
}

type crawlResponse struct {
	ResultData any `json:"result_data"`
}

type batchResponse struct {
	Pages []*spider.PageResult `json:"pages"`
}

func (s *Server) handleSpider(w http.ResponseWriter, r *http.Request) {
	res, ok := s.extractPage(w, r, spider.ModeFlat)
	if !ok {
		return
	}
	// result_data is always a list: the transposed rows, or the aggregate
	// record alone when field lengths differ.
	data := res.Data()
	if !res.Unpacked {
		data = spider.Records{res.Record}
	}
	writeJSON(w, http.StatusOK, spiderResponse{
		ResultData: data,
		IsUnpacked: res.Unpacked,
	})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	res, ok := s.extractPage(w, r, spider.ModeNested)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, crawlResponse{ResultData: res.Data()})
}

// extractPage decodes a single-page envelope, fetches the page and runs
// the engine in mode. It writes the error response and returns false on
// failure.
func (s *Server) extractPage(w http.ResponseWriter, r *http.Request, mode spider.Mode) (*spider.Result, bool) {
	env, ok := s.decode(w, r, "page.json")
	if !ok {
		return nil, false
	}

	markup, err := s.fetcher.Fetch(r.Context(), env.URL)
	if err != nil {
		status := http.StatusBadGateway
		if spider.ErrorCode(err) == spider.EINVALID {
			status = http.StatusUnprocessableEntity
		}
		jsonError(w, "fetch "+env.URL+": "+errorText(err), status)
		return nil, false
	}

	res, err := s.extractor.Extract(&spider.ExtractRequest{
		Markup:  markup,
		Schema:  env.Schema,
		Dialect: env.Dialect,
		Mode:    mode,
		Format:  env.Format,
	})
	if err != nil {
		jsonError(w, errorText(err), engineStatus(err))
		return nil, false
	}
	return res, true
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if s.batch == nil {
		jsonError(w, "batch extraction is not enabled", http.StatusNotImplemented)
		return
	}
	env, ok := s.decode(w, r, "batch.json")
	if !ok {
		return
	}

	urls := env.URLs
	if env.Sitemap != "" {
		if s.sitemaps == nil {
			jsonError(w, "sitemap discovery is not enabled", http.StatusNotImplemented)
			return
		}
		filter, err := spider.NewURLFilter(env.Filter, nil)
		if err != nil {
			jsonError(w, errorText(err), http.StatusUnprocessableEntity)
			return
		}
		found, err := s.sitemaps.DiscoverURLs(r.Context(), env.Sitemap, filter)
		if err != nil {
			jsonError(w, "sitemap "+env.Sitemap+": "+errorText(err), http.StatusBadGateway)
			return
		}
		urls = append(urls, found...)
	}

	mode := env.Mode
	if mode == "" {
		mode = spider.ModeFlat
	}
	results, err := s.batch.Run(r.Context(), urls, spider.ExtractRequest{
		Schema:  env.Schema,
		Dialect: env.Dialect,
		Mode:    mode,
		Format:  env.Format,
	}, nil)
	if err != nil {
		jsonError(w, errorText(err), engineStatus(err))
		return
	}

	if results == nil {
		results = []*spider.PageResult{}
	}
	writeJSON(w, http.StatusOK, batchResponse{Pages: results})
}

// decode reads the body, checks it against the named envelope schema and
// decodes it into a request. It writes the error response and returns
// false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, envelope string) (*gjson.Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}

	if err := validateEnvelope(envelope, body); err != nil {
		jsonError(w, errorText(err), http.StatusUnprocessableEntity)
		return nil, false
	}

	env, err := gjson.ParseRequest(body)
	if err != nil {
		jsonError(w, errorText(err), engineStatus(err))
		return nil, false
	}
	return env, true
}

// engineStatus maps an error onto a response status. Extraction failures
// are client errors; malformed envelopes are unprocessable.
func engineStatus(err error) int {
	switch spider.ErrorCode(err) {
	case spider.EINVALID:
		return http.StatusUnprocessableEntity
	case spider.EINTERNAL:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// errorText returns the message of application errors and the plain
// error text otherwise.
func errorText(err error) string {
	var e *spider.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		jsonError(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(map[string]string{"exception": msg})
}
