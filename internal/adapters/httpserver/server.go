package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2"

	"github.com/marchal/traiteur/internal/domain"
	"github.com/marchal/traiteur/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	quotes   *usecase.QuoteUC
	catalog  *usecase.CatalogUC
	settings *usecase.SettingsUC
	oauthCfg *oauth2.Config

	adminAllowed map[string]struct{}
	adminSecret  []byte
}

func New(q *usecase.QuoteUC, c *usecase.CatalogUC, st *usecase.SettingsUC, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{quotes: q, catalog: c, settings: st, oauthCfg: oauthCfg, mux: http.NewServeMux()}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed
	sec := os.Getenv("JWT_ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		PublicRateLimit(map[string]int{
			"/api/quotes":       10,
			"/api/quotes/price": 20,
		}),
		RateLimit(60),
		SecurityHeaders,
		Gzip,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/catalog", s.apiCatalog)
	s.mux.HandleFunc("/api/quotes/price", s.apiQuotePrice)
	s.mux.HandleFunc("/api/quotes", s.apiQuotes)
	s.mux.HandleFunc("/api/quotes/", s.apiQuoteByNumber)

	s.mux.HandleFunc("/api/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("/api/admin/categories", s.apiAdminCategory)
	s.mux.HandleFunc("/api/admin/products", s.apiAdminProduct)
	s.mux.HandleFunc("/api/admin/products/", s.apiAdminProductByID)
	s.mux.HandleFunc("/api/admin/products/describe", s.apiAdminDescribe)
	s.mux.HandleFunc("/api/admin/options", s.apiAdminOption)
	s.mux.HandleFunc("/api/admin/suboptions", s.apiAdminSubOption)
	s.mux.HandleFunc("/api/admin/sizes", s.apiAdminSize)
	s.mux.HandleFunc("/api/admin/settings", s.apiAdminSettings)
	s.mux.HandleFunc("/api/admin/zones", s.apiAdminZones)
	s.mux.HandleFunc("/admin/quotes.xlsx", s.handleAdminExport)

	s.mux.HandleFunc("/auth/google", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("/logout", s.handleLogout)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) apiCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	mode := domain.ServiceMode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		http.Error(w, "mode", 400)
		return
	}
	cats, err := s.catalog.ForMode(r.Context(), mode)
	if err != nil {
		http.Error(w, "catalog", 500)
		return
	}
	writeJSON(w, 200, cats)
}

type quoteRequestDTO struct {
	Mode             string              `json:"mode"`
	EventDate        string              `json:"event_date"`
	GuestCount       int                 `json:"guest_count"`
	DurationHours    float64             `json:"duration_hours"`
	DeliveryLocation string              `json:"delivery_location"`
	DistanceKm       *float64            `json:"distance_km"`
	Selection        domain.Selection    `json:"selection"`
	Customer         domain.CustomerInfo `json:"customer"`
	Notes            string              `json:"notes"`
}

func (dto quoteRequestDTO) toDomain() (domain.QuoteRequest, error) {
	req := domain.QuoteRequest{
		Mode:             domain.ServiceMode(dto.Mode),
		GuestCount:       dto.GuestCount,
		DurationHours:    dto.DurationHours,
		DeliveryLocation: dto.DeliveryLocation,
		ClientDistanceKm: dto.DistanceKm,
		Selection:        dto.Selection,
		Customer:         dto.Customer,
		Notes:            dto.Notes,
	}
	if dto.EventDate != "" {
		d, err := time.Parse("2006-01-02", dto.EventDate)
		if err != nil {
			return req, fmt.Errorf("event_date: %w", err)
		}
		req.EventDate = d
	}
	return req, nil
}

func (s *Server) decodeQuoteRequest(r *http.Request) (domain.QuoteRequest, error) {
	var dto quoteRequestDTO
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(&dto); err != nil {
		return domain.QuoteRequest{}, errors.New("json")
	}
	return dto.toDomain()
}

func (s *Server) apiQuotePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	req, err := s.decodeQuoteRequest(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	b, err := s.quotes.Preview(r.Context(), req)
	if err != nil {
		writePricingError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, 200, b)
}

func (s *Server) apiQuotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		req, err := s.decodeQuoteRequest(r)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		q, err := s.quotes.Create(r.Context(), req)
		if err != nil {
			writePricingError(w, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, 201, q)
	case http.MethodGet:
		if !s.requireAdmin(w, r) {
			return
		}
		f := domain.QuoteFilter{
			Status: domain.QuoteStatus(r.URL.Query().Get("status")),
			Mode:   domain.ServiceMode(r.URL.Query().Get("mode")),
		}
		f.Year, _ = strconv.Atoi(r.URL.Query().Get("year"))
		f.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
		f.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
		list, total, err := s.quotes.List(r.Context(), f)
		if err != nil {
			http.Error(w, "list", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"quotes": list, "total": total})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiQuoteByNumber(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/quotes/")
	parts := strings.SplitN(rest, "/", 2)
	number := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		q, err := s.quotes.Get(r.Context(), number)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "quote", 404)
				return
			}
			http.Error(w, "quote", 500)
			return
		}
		// numbers are sequential and guessable; the customer link carries the
		// quote id as an unguessable access key
		if !s.isAdmin(r) && r.URL.Query().Get("key") != q.ID.String() {
			http.Error(w, "quote", 404)
			return
		}
		writeJSON(w, 200, q)
	case action == "status" && r.Method == http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		q, err := s.quotes.Transition(r.Context(), number, domain.QuoteStatus(req.Status))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "quote", 404)
				return
			}
			if errors.Is(err, usecase.ErrIllegalTransition) {
				http.Error(w, err.Error(), 409)
				return
			}
			http.Error(w, "status", 500)
			return
		}
		if q.Status == domain.QuoteStatusSent {
			go sendQuoteNotify(q)
		}
		writeJSON(w, 200, q)
	case action == "notes" && r.Method == http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 16<<10)).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		if err := s.quotes.SetNotes(r.Context(), number, req.Notes); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "quote", 404)
				return
			}
			http.Error(w, "notes", 500)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	case action == "reprice" && r.Method == http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		q, err := s.quotes.Reprice(r.Context(), number)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "quote", 404)
				return
			}
			writePricingError(w, err)
			return
		}
		writeJSON(w, 200, q)
	default:
		http.Error(w, "method", 405)
	}
}

// --- admin catalog ---

func (s *Server) apiAdminCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !s.requireAdmin(w, r) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
		}
		return
	}
	var c domain.Category
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&c); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if err := s.catalog.SaveCategory(r.Context(), &c); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, 200, c)
}

func (s *Server) apiAdminProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !s.requireAdmin(w, r) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
		}
		return
	}
	var p domain.Product
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&p); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if err := s.catalog.SaveProduct(r.Context(), &p); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, 200, p)
}

func (s *Server) apiAdminProductByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/admin/products/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "id", 400)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := s.catalog.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "product", 404)
				return
			}
			http.Error(w, "product", 500)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodDelete:
		if err := s.catalog.DeleteProduct(r.Context(), id); err != nil {
			http.Error(w, "delete", 500)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiAdminOption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !s.requireAdmin(w, r) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
		}
		return
	}
	var o domain.Option
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&o); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if err := s.catalog.SaveOption(r.Context(), &o); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) apiAdminSubOption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !s.requireAdmin(w, r) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
		}
		return
	}
	var sub domain.SubOption
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&sub); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if err := s.catalog.SaveSubOption(r.Context(), &sub); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, 200, sub)
}

func (s *Server) apiAdminSize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !s.requireAdmin(w, r) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
		}
		return
	}
	var v domain.SizedVariant
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&v); err != nil {
		http.Error(w, "json", 400)
		return
	}
	if err := s.catalog.SaveSize(r.Context(), &v); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, 200, v)
}

func (s *Server) apiAdminSettings(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		key := r.URL.Query().Get("key")
		if key == "" {
			http.Error(w, "key", 400)
			return
		}
		val, ok, err := s.settings.Get(r.Context(), key)
		if err != nil {
			http.Error(w, "settings", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"key": key, "value": val, "set": ok})
	case http.MethodPut, http.MethodPost:
		var req struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
			http.Error(w, "json", 400)
			return
		}
		if err := s.settings.Set(r.Context(), req.Key, req.Value); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiAdminZones(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		zones, err := s.settings.ListZones(r.Context())
		if err != nil {
			http.Error(w, "zones", 500)
			return
		}
		writeJSON(w, 200, zones)
	case http.MethodPut:
		var zones []domain.DeliveryZone
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&zones); err != nil {
			http.Error(w, "json", 400)
			return
		}
		if err := s.settings.ReplaceZones(r.Context(), zones); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		writeJSON(w, 200, map[string]string{"status": "ok"})
	default:
		http.Error(w, "method", 405)
	}
}

// handleAdminExport streams the filtered quote book as a spreadsheet.
func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	f := domain.QuoteFilter{
		Status:   domain.QuoteStatus(r.URL.Query().Get("status")),
		Mode:     domain.ServiceMode(r.URL.Query().Get("mode")),
		PageSize: 5000,
	}
	f.Year, _ = strconv.Atoi(r.URL.Query().Get("year"))
	quotes, _, err := s.quotes.List(r.Context(), f)
	if err != nil {
		http.Error(w, "list", 500)
		return
	}

	xf := excelize.NewFile()
	defer xf.Close()
	sheet := "Quotes"
	_ = xf.SetSheetName("Sheet1", sheet)
	headers := []string{"Number", "Event date", "Mode", "Status", "Guests", "Hours", "Customer", "Base", "Supplements", "Products", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = xf.SetCellValue(sheet, cell, h)
	}
	for row, q := range quotes {
		values := []any{
			q.Number,
			q.EventDate.Format("2006-01-02"),
			string(q.Mode),
			string(q.Status),
			q.GuestCount,
			q.DurationHours,
			q.CustomerName,
			q.BasePrice.InexactFloat64(),
			q.SupplementsTotal.InexactFloat64(),
			q.ProductsTotal.InexactFloat64(),
			q.Total.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = xf.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=quotes_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := xf.Write(w); err != nil {
		log.Error().Err(err).Msg("xlsx write")
	}
}

// --- admin auth ---

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	cfgKey := os.Getenv("ADMIN_API_KEY")
	if cfgKey == "" {
		log.Error().Msg("ADMIN_API_KEY missing")
		http.Error(w, "config", 500)
		return
	}
	apiKey := r.Header.Get("X-Admin-Key")
	if apiKey == "" || !secureCompare(apiKey, cfgKey) {
		http.Error(w, "unauthorized", 401)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	_ = json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" && len(s.adminAllowed) == 1 {
		for k := range s.adminAllowed {
			email = k
		}
	}
	if _, ok := s.adminAllowed[email]; !ok {
		http.Error(w, "forbidden", 403)
		return
	}
	tok, exp, err := s.issueAdminToken(email, 30*time.Minute)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	writeJSON(w, 200, map[string]any{"token": tok, "exp": exp.Unix(), "email": email})
}

func (s *Server) isAdmin(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		tok := strings.TrimSpace(auth[7:])
		if _, err := s.verifyAdminToken(tok); err == nil {
			return true
		}
	}
	if c, err := r.Cookie("admin_token"); err == nil && c.Value != "" {
		if _, err := s.verifyAdminToken(c.Value); err == nil {
			return true
		}
	}
	return false
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.isAdmin(r) {
		return true
	}
	http.Error(w, "unauthorized", 401)
	return false
}

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, time.Time, error) {
	head := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	exp := time.Now().Add(dur)
	claims := map[string]any{"sub": email, "email": email, "role": "admin", "exp": exp.Unix(), "iat": time.Now().Unix(), "iss": "traiteur"}
	b, _ := json.Marshal(claims)
	pay := base64.RawURLEncoding.EncodeToString(b)
	unsigned := head + "." + pay
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return unsigned + "." + sig, exp, nil
}

func (s *Server) verifyAdminToken(tok string) (string, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("format")
	}
	unsigned := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("sig")
	}
	h := hmac.New(sha256.New, s.adminSecret)
	h.Write([]byte(unsigned))
	if !hmac.Equal(sig, h.Sum(nil)) {
		return "", fmt.Errorf("signature")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("payload")
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", fmt.Errorf("json")
	}
	role, _ := m["role"].(string)
	email, _ := m["email"].(string)
	expF, _ := m["exp"].(float64)
	if role != "admin" || email == "" {
		return "", fmt.Errorf("claims")
	}
	if time.Now().Unix() > int64(expF) {
		return "", fmt.Errorf("expired")
	}
	if _, ok := s.adminAllowed[strings.ToLower(email)]; !ok {
		return "", fmt.Errorf("not allowed")
	}
	return email, nil
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := 0; i < len(a); i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// --- google oauth for the back office ---

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", 500)
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true})
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline), 302)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil {
		http.Error(w, "oauth not configured", 500)
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		http.Error(w, "state", 400)
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange")
		http.Error(w, "oauth", 400)
		return
	}
	client := s.oauthCfg.Client(r.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v3/userinfo")
	if err != nil || resp.StatusCode != 200 {
		log.Error().Err(err).Msg("userinfo")
		http.Error(w, "userinfo", 400)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var info struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(body, &info)
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		http.Error(w, "email", 400)
		return
	}
	if _, ok := s.adminAllowed[email]; !ok {
		http.Error(w, "forbidden", 403)
		return
	}
	adminTok, _, err := s.issueAdminToken(email, 6*time.Hour)
	if err != nil {
		http.Error(w, "token", 500)
		return
	}
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: adminTok, Path: "/", MaxAge: 60 * 60 * 6, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	http.Redirect(w, r, "/", 302)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{Name: "admin_token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: secure, SameSite: http.SameSiteStrictMode})
	http.Redirect(w, r, "/", 302)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writePricingError maps engine failures onto HTTP: validation issues are a
// 422 with the full list, unknown references and out-of-range deliveries a
// 400, missing configuration a 500.
func writePricingError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, 422, map[string]any{"error": "validation", "issues": vErr.Issues})
		return
	}
	var outOfRange domain.DeliveryOutOfRangeError
	if errors.As(err, &outOfRange) {
		writeJSON(w, 400, map[string]any{"error": "delivery_out_of_range", "max_km": outOfRange.MaxKm})
		return
	}
	var unknownP domain.UnknownProductError
	var unknownO domain.UnknownOptionError
	var unknownS domain.UnknownSizeError
	if errors.As(err, &unknownP) || errors.As(err, &unknownO) || errors.As(err, &unknownS) {
		writeJSON(w, 400, map[string]any{"error": err.Error()})
		return
	}
	var missing domain.MissingSettingError
	if errors.As(err, &missing) {
		log.Error().Str("key", missing.Key).Msg("missing required setting")
		writeJSON(w, 500, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, 400, map[string]any{"error": err.Error()})
}
