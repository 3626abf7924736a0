package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/rongwang/fintrack-server/internal/report"
)

// parseTransactionFilter reads the listing filters from the query string
func parseTransactionFilter(c *gin.Context) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	var err error

	if filter.WalletID, err = queryID("wallet_id", c.Query("wallet_id")); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = queryID("category_id", c.Query("category_id")); err != nil {
		return filter, err
	}
	txnType := c.Query("transaction_type")
	if txnType == "" {
		txnType = c.Query("type")
	}
	filter.Type = queryString(txnType)
	if filter.StartDate, err = queryDate("start_date", c.Query("start_date")); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryDate("end_date", c.Query("end_date")); err != nil {
		return filter, err
	}

	limit, err := queryInt("limit", c.Query("limit"))
	if err != nil {
		return filter, err
	}
	if limit != nil {
		filter.Limit = *limit
	}
	offset, err := queryInt("offset", c.Query("offset"))
	if err != nil {
		return filter, err
	}
	if offset != nil {
		filter.Offset = *offset
	}
	return filter, nil
}

func (h *Handler) ListTransactions(c *gin.Context) {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	list, err := h.service.ListTransactions(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    list.Transactions,
		Meta:    &models.Meta{Total: list.Total, Limit: list.Limit, Offset: list.Offset},
	})
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var err error
	if req.WalletID, err = NormalizeID("wallet_id", req.WalletID); err != nil {
		h.fail(c, err)
		return
	}
	if req.CategoryID, err = NormalizeID("category_id", req.CategoryID); err != nil {
		h.fail(c, err)
		return
	}
	req.CategoryName = NormalizeText(req.CategoryName)

	txn, err := h.service.CreateTransaction(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, "Transaction created successfully", txn)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	transactionID, err := pathID(c.Param("id"), "Transaction")
	if err != nil {
		h.fail(c, err)
		return
	}

	txn, err := h.service.GetTransaction(c.Request.Context(), currentUserID(c), transactionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", txn)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	transactionID, err := pathID(c.Param("id"), "Transaction")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req models.UpdateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.WalletID, err = NormalizeID("wallet_id", req.WalletID); err != nil {
		h.fail(c, err)
		return
	}
	if req.CategoryID, err = NormalizeID("category_id", req.CategoryID); err != nil {
		h.fail(c, err)
		return
	}
	req.CategoryName = NormalizeText(req.CategoryName)

	txn, err := h.service.UpdateTransaction(c.Request.Context(), currentUserID(c), transactionID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Transaction updated successfully", txn)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	transactionID, err := pathID(c.Param("id"), "Transaction")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.service.DeleteTransaction(c.Request.Context(), currentUserID(c), transactionID); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Transaction deleted successfully", nil)
}

// ExportTransactions streams the filtered transactions as an XLSX file.
// The workbook is rendered before any byte is written so errors still get
// a JSON body.
func (h *Handler) ExportTransactions(c *gin.Context) {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportTransactions(c.Request.Context(), currentUserID(c), filter, &buf); err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}
