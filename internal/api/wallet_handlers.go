package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rongwang/fintrack-server/internal/models"
)

func (h *Handler) ListWallets(c *gin.Context) {
	wallets, err := h.service.ListWallets(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", wallets)
}

func (h *Handler) CreateWallet(c *gin.Context) {
	var req models.CreateWalletRequest
	if !h.bindJSON(c, &req) {
		return
	}

	wallet, err := h.service.CreateWallet(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, "Wallet created successfully", wallet)
}

func (h *Handler) GetWallet(c *gin.Context) {
	walletID, err := pathID(c.Param("id"), "Wallet")
	if err != nil {
		h.fail(c, err)
		return
	}

	wallet, err := h.service.GetWallet(c.Request.Context(), currentUserID(c), walletID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "", wallet)
}

func (h *Handler) UpdateWallet(c *gin.Context) {
	walletID, err := pathID(c.Param("id"), "Wallet")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req models.UpdateWalletRequest
	if !h.bindJSON(c, &req) {
		return
	}

	wallet, err := h.service.UpdateWallet(c.Request.Context(), currentUserID(c), walletID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Wallet updated successfully", wallet)
}

// DeleteWallet soft deletes and reports how many transactions reference it
func (h *Handler) DeleteWallet(c *gin.Context) {
	walletID, err := pathID(c.Param("id"), "Wallet")
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.service.DeleteWallet(c.Request.Context(), currentUserID(c), walletID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Wallet deleted successfully", resp)
}
