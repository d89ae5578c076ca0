// Daily Hand Challenge routes: every player who visits on a given UTC
// calendar date is dealt the same 18-tile hand (see internal/daily), and
// can submit one result for that date. Exposes:
//   - GET  /daily/hand        → today's date + deterministic hand
//   - POST /daily/submit      → record today's outcome (once per caller)
//   - GET  /daily/leaderboard → today's (or a given date's) top results
package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/daily"
	"github.com/willdavis/bananagrams/internal/recordstore"
	"github.com/willdavis/bananagrams/internal/validator"
)

// dailyServer wraps the salt used to derive each day's hand.
type dailyServer struct {
	srv  *Server
	salt string
}

// mountDaily registers all /daily routes on r.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, salt: getEnv("DAILY_SALT", "local_dev_salt")}
	r.Route("/daily", func(r chi.Router) {
		r.Get("/hand", dd.handleHand)
		r.Post("/submit", dd.handleSubmit)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

type handRes struct {
	Date  string         `json:"date"`
	Hand  map[string]int `json:"hand"`
	Tiles int            `json:"tiles"`
}

// handleHand returns today's deterministic hand, expressed as a
// letter->count map so the client can render tiles directly.
func (d *dailyServer) handleHand(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	hand := daily.Hand(now, d.salt)
	_ = json.NewEncoder(w).Encode(handRes{
		Date:  daily.DateKey(now),
		Hand:  handToMap(hand),
		Tiles: hand.Total(),
	})
}

func handToMap(h alphabet.Hand) map[string]int {
	out := make(map[string]int)
	for i := 0; i < alphabet.NumLetters; i++ {
		if h[i] > 0 {
			out[string(alphabet.Letter(byte(i)))] = int(h[i])
		}
	}
	return out
}

type submitReq struct {
	Board     []string `json:"board"`
	ElapsedMs int      `json:"elapsedMs"`
}

type submitRes struct {
	Recorded      bool `json:"recorded"`
	AlreadyPlayed bool `json:"alreadyPlayed"`
	PlacedAll     bool `json:"placedAll"`
}

// handleSubmit re-validates the caller's assembled board against today's
// hand before recording anything: every run must be a dictionary word and
// the occupied cells must account for the hand exactly (internal/validator
// used as a standalone checker rather than inside a search). A board that
// fails validation is still recorded, as an incomplete attempt, with
// PlacedAll false. Repeat submissions for a date that already has a row
// are reported as AlreadyPlayed, matching the table's unique constraint on
// (user_id, date).
func (d *dailyServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	uid := d.srv.sessionKey(w, r)
	date := daily.DateKey(time.Now().UTC())

	played, err := recordstore.DailyAlreadyPlayed(r.Context(), d.srv.db, uid, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(submitRes{Recorded: false, AlreadyPlayed: true})
		return
	}

	hand := daily.Hand(time.Now().UTC(), d.salt)
	idx := d.srv.dict.Select(false)

	placedAll := false
	b, err := boardFromRows(req.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_board", err.Error())
		return
	}
	if b != nil {
		placedAll = validator.ValidateBoard(b, hand, idx) == nil
	}

	if err := recordstore.InsertDailyResult(r.Context(), d.srv.db, recordstore.DailyResult{
		UserID: uid, Date: date, HandSeed: hand.String(), PlacedAll: placedAll, ElapsedMs: req.ElapsedMs,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	if me := userFromContext(r); me != nil && placedAll {
		if err := bumpDailyStreak(r, d.srv, me.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
	}

	_ = json.NewEncoder(w).Encode(submitRes{Recorded: true, PlacedAll: placedAll})
}

// boardFromRows parses a client-submitted grid of equal-width rows (spaces
// for empty cells, as produced by board.Board.ToStrings) into a *board.Board
// anchored at the origin. Returns a nil board, no error, for an empty
// submission.
func boardFromRows(rows []string) (*board.Board, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > board.Size {
		return nil, fmt.Errorf("board has %d rows, max %d", len(rows), board.Size)
	}
	b := board.New()
	minRow, maxRow, minCol, maxCol := board.Size, -1, board.Size, -1
	for r, line := range rows {
		if len(line) > board.Size {
			return nil, fmt.Errorf("row %d has %d columns, max %d", r, len(line), board.Size)
		}
		for c := 0; c < len(line); c++ {
			ch := line[c]
			if ch == ' ' {
				continue
			}
			if ch < 'A' || ch > 'Z' {
				return nil, fmt.Errorf("row %d: invalid character %q", r, ch)
			}
			b.Set(r, c, alphabet.Code(ch))
			if r < minRow {
				minRow = r
			}
			if r > maxRow {
				maxRow = r
			}
			if c < minCol {
				minCol = c
			}
			if c > maxCol {
				maxCol = c
			}
		}
	}
	if maxRow == -1 {
		return nil, nil
	}
	b.Widen(minRow, maxRow, minCol, maxCol)
	return b, nil
}

// bumpDailyStreak increments the signed-in user's streak by one. It does
// not detect a missed prior day and reset to zero; that needs yesterday's
// result, which this schema only tracks as a per-user-per-date row, not a
// running streak ledger.
func bumpDailyStreak(r *http.Request, s *Server, userID string) error {
	u, err := recordstore.FindUserByID(r.Context(), s.db, userID)
	if err != nil {
		return err
	}
	return recordstore.BumpDailyStreak(r.Context(), s.db, userID, u.DailyStreak+1)
}

type leaderboardRes struct {
	Date string                   `json:"date"`
	Top  []recordstore.DailyLBRow `json:"top"`
}

// handleLeaderboard returns the top results for the given date (default
// today), complete solves first, fastest elapsed time breaking ties.
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now().UTC())
	}
	rows, err := recordstore.GetDailyLeaderboard(r.Context(), d.srv.db, date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(leaderboardRes{Date: date, Top: rows})
}
