package settlement

import (
	"errors"
	"time"

	"mostralo-api/core"
	"mostralo-api/earnings"
	"mostralo-api/filestore"
	"mostralo-api/logger"
	"mostralo-api/models"

	"gorm.io/gorm"
)

// Workflow batches ledger entries into payment requests and drives
// their review. Approve and DirectPay both funnel into the ledger's
// Settle, so settlement semantics are defined once.
type Workflow struct {
	db     *gorm.DB
	ledger *earnings.Ledger
	files  filestore.Store
}

func NewWorkflow(db *gorm.DB, ledger *earnings.Ledger, files filestore.Store) *Workflow {
	return &Workflow{db: db, ledger: ledger, files: files}
}

// CreateRequest builds a pending PaymentRequest from the driver's
// pending, unrequested earnings. Ownership, pendency and the requested
// flag are all validated before any mutation; the total is the sum of
// the referenced amounts read in the same transaction.
func (w *Workflow) CreateRequest(caller core.Principal, earningIDs []uint, notes string) (*models.PaymentRequest, error) {
	if caller.Role != core.RoleDriver {
		return nil, core.ErrUnauthorized
	}

	var request models.PaymentRequest
	err := w.db.Transaction(func(tx *gorm.DB) error {
		ledger := w.ledger.WithTx(tx)

		rows, err := ledger.FindOwned(caller.UserID, earningIDs)
		if err != nil {
			return err
		}

		// one request targets one store
		storeID := rows[0].StoreID
		var total int64
		for _, e := range rows {
			if e.StoreID != storeID {
				return core.ErrInvalidEarningsReference
			}
			total += e.EarningsCents
		}

		// fails when any earning is already flagged for another request
		if err := ledger.MarkRequested(caller.UserID, earningIDs); err != nil {
			return err
		}

		request = models.PaymentRequest{
			DriverID:    caller.UserID,
			StoreID:     storeID,
			TotalCents:  total,
			Status:      models.RequestPending,
			Notes:       notes,
			RequestedAt: time.Now().UTC(),
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		items := make([]models.PaymentRequestItem, 0, len(rows))
		for _, e := range rows {
			items = append(items, models.PaymentRequestItem{RequestID: request.ID, EarningID: e.ID})
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Approve settles every earning of a pending request. The status flip
// is a conditional UPDATE, so of two concurrent reviews exactly one
// wins; a settle failure rolls everything back and the request stays
// pending. Receipt upload failure is non-fatal: the payment reference
// is the authoritative record, so settlement proceeds without the URL
// and the warning is surfaced to the caller.
func (w *Workflow) Approve(caller core.Principal, requestID uint, reference string, receipt []byte, receiptType string) (*models.PaymentRequest, string, error) {
	req, err := w.loadWithItems(requestID)
	if err != nil {
		return nil, "", err
	}
	if !caller.IsStoreAdmin(req.StoreID) {
		return nil, "", core.ErrUnauthorized
	}
	if reference == "" {
		return nil, "", core.ErrValidation
	}

	receiptURL, warning := w.uploadReceipt(receipt, receiptType)

	now := time.Now().UTC()
	err = w.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentRequest{}).
			Where("id = ? AND status = ?", req.ID, models.RequestPending).
			Updates(map[string]interface{}{"status": models.RequestApproved, "reviewed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrInvalidTransition
		}
		return w.ledger.WithTx(tx).Settle(req.DriverID, req.StoreID, earningIDs(req), reference, receiptURL)
	})
	if err != nil {
		return nil, "", err
	}

	req.Status = models.RequestApproved
	req.ReviewedAt = &now
	return req, warning, nil
}

// Reject flips the request to rejected and releases its earnings: they
// stay pending with the requested flag cleared, eligible for a new
// request.
func (w *Workflow) Reject(caller core.Principal, requestID uint, reason string) (*models.PaymentRequest, error) {
	req, err := w.loadWithItems(requestID)
	if err != nil {
		return nil, err
	}
	if !caller.IsStoreAdmin(req.StoreID) {
		return nil, core.ErrUnauthorized
	}

	now := time.Now().UTC()
	err = w.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentRequest{}).
			Where("id = ? AND status = ?", req.ID, models.RequestPending).
			Updates(map[string]interface{}{
				"status":      models.RequestRejected,
				"reviewed_at": now,
				"notes":       reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrInvalidTransition
		}
		return w.ledger.WithTx(tx).ClearRequested(req.DriverID, earningIDs(req))
	})
	if err != nil {
		return nil, err
	}

	req.Status = models.RequestRejected
	req.ReviewedAt = &now
	req.Notes = reason
	return req, nil
}

// DirectPay settles arbitrary pending earnings of one driver without a
// request: the store paying proactively instead of being solicited.
// The earnings need never have been flagged as requested.
func (w *Workflow) DirectPay(caller core.Principal, driverID, storeID uint, earningIDs []uint, reference string, receipt []byte, receiptType string) (string, error) {
	if !caller.IsStoreAdmin(storeID) {
		return "", core.ErrUnauthorized
	}
	if reference == "" {
		return "", core.ErrValidation
	}

	receiptURL, warning := w.uploadReceipt(receipt, receiptType)
	if err := w.ledger.Settle(driverID, storeID, earningIDs, reference, receiptURL); err != nil {
		return "", err
	}
	return warning, nil
}

// ListForDriver returns the driver's requests, newest first.
func (w *Workflow) ListForDriver(caller core.Principal, driverID uint) ([]models.PaymentRequest, error) {
	if !caller.IsDriver(driverID) && caller.Role != core.RoleAdmin {
		return nil, core.ErrUnauthorized
	}
	var rows []models.PaymentRequest
	err := w.db.Preload("Items.Earning").
		Where("driver_id = ?", driverID).
		Order("requested_at desc").
		Find(&rows).Error
	return rows, err
}

// ListForStore returns a store's requests, optionally by status.
func (w *Workflow) ListForStore(caller core.Principal, storeID uint, status models.RequestStatus) ([]models.PaymentRequest, error) {
	if !caller.IsStoreAdmin(storeID) {
		return nil, core.ErrUnauthorized
	}
	q := w.db.Preload("Items.Earning").Preload("Driver").Where("store_id = ?", storeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.PaymentRequest
	err := q.Order("requested_at desc").Find(&rows).Error
	return rows, err
}

// Get returns one request, visible to its driver and store admins.
func (w *Workflow) Get(caller core.Principal, requestID uint) (*models.PaymentRequest, error) {
	req, err := w.loadWithItems(requestID)
	if err != nil {
		return nil, err
	}
	if !caller.IsDriver(req.DriverID) && !caller.IsStoreAdmin(req.StoreID) {
		return nil, core.ErrUnauthorized
	}
	return req, nil
}

func (w *Workflow) loadWithItems(id uint) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	if err := w.db.Preload("Items").First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (w *Workflow) uploadReceipt(receipt []byte, receiptType string) (url, warning string) {
	if len(receipt) == 0 {
		return "", ""
	}
	url, err := w.files.Upload(receipt, receiptType)
	if err != nil {
		logger.Warn("settlement: receipt upload failed, settling without receipt: %v", err)
		return "", "receipt upload failed; settlement recorded without receipt"
	}
	return url, ""
}

func earningIDs(req *models.PaymentRequest) []uint {
	ids := make([]uint, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.EarningID)
	}
	return ids
}
