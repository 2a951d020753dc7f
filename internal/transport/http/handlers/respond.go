package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	"github.com/ivankudzin/sparkmatch/internal/pkg/validate"
	authsvc "github.com/ivankudzin/sparkmatch/internal/services/auth"
	httperrors "github.com/ivankudzin/sparkmatch/internal/transport/http/errors"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into target and validates it. An empty body
// is accepted when allowEmpty is set.
func decodeJSON(r *http.Request, target any, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return apperr.InvalidArgument("invalid request body")
		}
	}
	if err := validate.Struct(target); err != nil {
		return apperr.InvalidArgument(validate.Message(err))
	}
	return nil
}

func writeOK(w http.ResponseWriter, message string, data any) {
	httperrors.Write(w, http.StatusOK, message, data)
}

func writeError(w http.ResponseWriter, err error) {
	httperrors.WriteError(w, err)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		httperrors.Write(w, http.StatusUnauthorized, "authentication required", nil)
		return "", false
	}
	return identity.UserID, true
}

// pageParams reads page and limit. Malformed or missing values yield zero
// and the service applies its defaults.
func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	return page, limit
}

// parseOverrides reads the optional discovery filters from the query.
// Values that do not parse are ignored rather than rejected.
func parseOverrides(r *http.Request) rules.FilterOverrides {
	q := r.URL.Query()
	o := rules.FilterOverrides{
		MinAge:                optionalInt(q.Get("minAge")),
		MaxAge:                optionalInt(q.Get("maxAge")),
		MaxDistance:           optionalInt(q.Get("maxDistance")),
		GenderIDs:             idList(q["genders"]),
		InterestIDs:           idList(q["interests"]),
		LoveLanguageIDs:       idList(q["loveLanguages"]),
		ZodiacIDs:             idList(q["zodiacs"]),
		WorkIDs:               idList(q["works"]),
		OrientationIDs:        idList(q["orientations"]),
		CommunicationStyleIDs: idList(q["communicationStyles"]),
	}
	if pt := strings.ToLower(strings.TrimSpace(q.Get("profileType"))); pt != "" {
		switch pt {
		case "personal", "business", "collaboration":
			o.ProfileType = pt
		}
	}
	if premium, err := strconv.ParseBool(strings.TrimSpace(q.Get("premium"))); err == nil {
		o.PremiumOnly = premium
	}
	return o
}

func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// idList accepts repeated params and comma separated values.
func idList(values []string) []string {
	out := make([]string, 0)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeStatus(w http.ResponseWriter, status int, message string, data any) {
	httperrors.Write(w, status, message, data)
}
