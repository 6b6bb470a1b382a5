package http

import (
	"bytes"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

// handleListTransactions lists all transactions, or one month when year or month is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, u core.User) {
	mp, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var txs []core.Transaction
	if mp.Year == 0 && mp.Month == 0 {
		txs, err = s.svc.Transactions.List(r.Context(), u.ID)
	} else {
		year, month := s.monthOrNow(mp)
		start, end := core.MonthBounds(year, month, s.opts.Location)
		txs, err = s.svc.Transactions.ListRange(r.Context(), u.ID, start, end)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionViews(txs)).Write(w)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request, u core.User) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svc.Transactions.Recent(r.Context(), u.ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionViews(txs)).Write(w)
}

func (s *Server) handleUpcomingTransactions(w http.ResponseWriter, r *http.Request, u core.User) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.svc.Transactions.Upcoming(r.Context(), u.ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionViews(txs)).Write(w)
}

// handleCreateTransaction stores one transaction, an installment plan or the
// first occurrence of a monthly or yearly series.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := req.transaction(s.opts.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.svc.Transactions.Create(r.Context(), u.ID, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(newCreatedView(res)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), u.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionView(t)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.patch(s.opts.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Update(r.Context(), u.ID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionView(t)).Write(w)
}

func (s *Server) handleTransactionStatus(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	status, err := req.status()
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.SetStatus(r.Context(), u.ID, id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newTransactionView(t)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, u core.User) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), u.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(messageView{Message: "transaction deleted"}).Write(w)
}

func (s *Server) handleDeleteAllTransactions(w http.ResponseWriter, r *http.Request, u core.User) {
	n, err := s.svc.Transactions.DeleteAll(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"message": "all transactions deleted", "deleted": n}).Write(w)
}

// handleExportTransactions streams the user's transactions as CSV or YAML.
// Without year and month every transaction is exported.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request, u core.User) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, FieldErrors{"format": err.Error()})
		return
	}
	mp, err := ParseMonthParams(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var year, month int
	if mp.Year != 0 || mp.Month != 0 {
		year, month = s.monthOrNow(mp)
	}

	rows, err := s.svc.Transactions.ExportRows(r.Context(), u.ID, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Render first so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows); err != nil {
		writeError(w, r, fmt.Errorf("render export: %w", err))
		return
	}

	name := "transactions." + format.Ext()
	if year != 0 {
		name = fmt.Sprintf("transactions-%04d-%02d.%s", year, month, format.Ext())
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentTx).InfoContext(r.Context(), "Transactions exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(rows))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
