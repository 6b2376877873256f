package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bverlaan/yogabench/internal/benchmark"
	"bverlaan/yogabench/internal/crawler"
	"bverlaan/yogabench/internal/pricing"
	"bverlaan/yogabench/services/status"
	"bverlaan/yogabench/storage"
)

// OfferRow is one dashboard row: an offer joined with its competitor and
// enriched with display fields.
type OfferRow struct {
	CompetitorID     string `json:"competitor_id"`
	Studio           string `json:"studio"`
	Tier             string `json:"tier"`
	Offer            string `json:"offer"`
	OfferType        string `json:"offer_type"`
	ClassType        string `json:"class_type"`
	Heat             string `json:"heat"`
	ClassLengthMin   string `json:"class_length_min"`
	SessionsIncluded string `json:"sessions_included"`
	DurationDays     string `json:"duration_days"`
	PriceEUR         string `json:"price_eur"`
	PriceUnit        string `json:"price_unit"`
	Price            string `json:"price"`
	PricePerClass    string `json:"price_per_class"`
}

var unitLabels = map[pricing.PriceUnit]string{
	pricing.UnitWeek:      " / week",
	pricing.UnitMonth:     " / month",
	pricing.UnitFourWeeks: " / 4 weeks",
	pricing.UnitSixMonths: " / 6 months",
	pricing.UnitYear:      " / year",
	pricing.UnitClass:     " / class",
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	offers, err := storage.LoadOffers(s.cfg.OffersPath)
	if err != nil {
		s.log.WithError(err).Error("failed to load offers")
		s.writeError(w, http.StatusInternalServerError, "failed to load offers")
		return
	}
	competitors, err := storage.LoadCompetitors(s.cfg.CompetitorsPath)
	if err != nil {
		s.log.WithError(err).Error("failed to load competitors")
		s.writeError(w, http.StatusInternalServerError, "failed to load competitors")
		return
	}

	s.writeJSON(w, http.StatusOK, buildOfferRows(offers, competitors))
}

func buildOfferRows(offers []pricing.Offer, competitors []crawler.Competitor) []OfferRow {
	byID := make(map[string]crawler.Competitor, len(competitors))
	for _, c := range competitors {
		byID[c.CompetitorID] = c
	}

	rows := make([]OfferRow, 0, len(offers))
	for _, offer := range offers {
		competitor := byID[offer.CompetitorID]

		studio := competitor.Name
		if studio == "" {
			studio = competitor.Brand
		}
		if studio == "" {
			studio = "Unknown"
		}
		tier := competitor.Tier
		if tier == "" {
			tier = "Unassigned"
		}
		name := offer.OfferName
		if name == "" {
			name = string(offer.OfferType)
		}
		if name == "" {
			name = "Offer"
		}

		priceLabel := ""
		if offer.PriceEUR != "" {
			priceLabel = fmt.Sprintf("EUR %s%s", offer.PriceEUR, unitLabels[offer.PriceUnit])
		}
		perClass := ""
		if value, ok := benchmark.PricePerClass(offer, benchmark.AssumedMonthlyClasses); ok {
			perClass = fmt.Sprintf("%.2f", value)
		}

		rows = append(rows, OfferRow{
			CompetitorID:     offer.CompetitorID,
			Studio:           studio,
			Tier:             tier,
			Offer:            name,
			OfferType:        string(offer.OfferType),
			ClassType:        offer.ClassType,
			Heat:             offer.Heat,
			ClassLengthMin:   offer.ClassLengthMin,
			SessionsIncluded: offer.SessionsIncluded,
			DurationDays:     offer.DurationDays,
			PriceEUR:         offer.PriceEUR,
			PriceUnit:        string(offer.PriceUnit),
			Price:            priceLabel,
			PricePerClass:    perClass,
		})
	}
	return rows
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	competitors, err := storage.LoadCompetitors(s.cfg.CompetitorsPath)
	if err != nil {
		s.log.WithError(err).Error("failed to load competitors")
		s.writeError(w, http.StatusInternalServerError, "failed to load competitors")
		return
	}
	if competitors == nil {
		competitors = []crawler.Competitor{}
	}
	s.writeJSON(w, http.StatusOK, competitors)
}

type pinsPayload struct {
	CompetitorIDs []string `json:"competitor_ids"`
}

func (s *Server) handlePins(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ids := storage.LoadPins(s.cfg.PinsPath)
		if ids == nil {
			ids = []string{}
		}
		s.writeJSON(w, http.StatusOK, pinsPayload{CompetitorIDs: ids})
	case http.MethodPost:
		var payload pinsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid pins payload")
			return
		}
		saved, err := storage.SavePins(s.cfg.PinsPath, payload.CompetitorIDs)
		if err != nil {
			s.log.WithError(err).Error("failed to save pins")
			s.writeError(w, http.StatusInternalServerError, "failed to save pins")
			return
		}
		s.writeJSON(w, http.StatusOK, pinsPayload{CompetitorIDs: saved})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleOwnStudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, storage.LoadOwnStudio(s.cfg.OwnStudioPath))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	offers, err := storage.LoadOffers(s.cfg.OffersPath)
	if err != nil {
		s.log.WithError(err).Error("failed to load offers")
		s.writeError(w, http.StatusInternalServerError, "failed to load offers")
		return
	}
	competitors, err := storage.LoadCompetitors(s.cfg.CompetitorsPath)
	if err != nil {
		s.log.WithError(err).Error("failed to load competitors")
		s.writeError(w, http.StatusInternalServerError, "failed to load competitors")
		return
	}

	rows := benchmark.Summarize(offers, competitors)
	if rows == nil {
		rows = []benchmark.SummaryRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

type refreshResponse struct {
	Started bool          `json:"started"`
	Status  status.Record `json:"status"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.runner == nil {
		s.writeError(w, http.StatusServiceUnavailable, "refresh pipeline not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	if s.tracker.InProgress() {
		s.writeJSON(w, http.StatusConflict, refreshResponse{Started: false, Status: s.tracker.Snapshot()})
		return
	}

	go func() {
		if err := s.runner.Refresh(limit); err != nil && !errors.Is(err, status.ErrAlreadyRunning) {
			s.log.WithError(err).Error("refresh run failed")
		}
	}()

	s.writeJSON(w, http.StatusAccepted, refreshResponse{Started: true, Status: s.tracker.Snapshot()})
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}
