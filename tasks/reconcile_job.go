package tasks

import (
	"fmt"

	"mostralo-api/logger"
	"mostralo-api/models"
	"mostralo-api/notify"

	"gorm.io/gorm"
)

// ReconcileJob audits the one-active-assignment invariant and refreshes
// stale feeds. The websocket feed is a hint, not a source of truth, so
// the job periodically re-broadcasts a pool snapshot to every store
// topic that has listeners; clients converge even when they missed an
// event.
type ReconcileJob struct {
	db  *gorm.DB
	hub *notify.Hub
}

func NewReconcileJob(db *gorm.DB, hub *notify.Hub) *ReconcileJob {
	return &ReconcileJob{db: db, hub: hub}
}

func (j *ReconcileJob) Execute() {
	j.auditAssignments()
	j.broadcastPools()
}

// auditAssignments flags orders whose assigned_driver_id disagrees with
// the set of non-terminal assignments. These indicate a bug or manual
// intervention; the job reports, it does not repair.
func (j *ReconcileJob) auditAssignments() {
	type mismatch struct {
		OrderID uint
		Drivers int64
	}

	var orphaned []uint
	err := j.db.Model(&models.Order{}).
		Where("assigned_driver_id IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM delivery_assignments a WHERE a.order_id = orders.id AND a.status IN ?)",
			[]models.AssignmentStatus{models.AssignmentAccepted, models.AssignmentPickedUp}).
		Where("status NOT IN ?", []models.OrderStatus{models.StatusCompleted, models.StatusCancelled}).
		Pluck("id", &orphaned).Error
	if err != nil {
		logger.Error("reconcile: orphan query: %v", err)
		return
	}
	for _, id := range orphaned {
		logger.Warn("reconcile: order %d has a driver but no active assignment", id)
	}

	var doubled []mismatch
	err = j.db.Model(&models.DeliveryAssignment{}).
		Select("order_id as order_id, count(*) as drivers").
		Where("status IN ?", []models.AssignmentStatus{models.AssignmentAccepted, models.AssignmentPickedUp}).
		Group("order_id").
		Having("count(*) > 1").
		Scan(&doubled).Error
	if err != nil {
		logger.Error("reconcile: duplicate query: %v", err)
		return
	}
	for _, m := range doubled {
		logger.Error("reconcile: order %d has %d active assignments", m.OrderID, m.Drivers)
	}
}

// broadcastPools pushes a fresh available-order snapshot to stores with
// at least one subscribed driver.
func (j *ReconcileJob) broadcastPools() {
	for _, topic := range j.hub.ActiveTopics() {
		var storeID uint
		if n, _ := fmt.Sscanf(topic, "available-orders:%d", &storeID); n != 1 {
			continue
		}

		var ids []uint
		err := j.db.Model(&models.Order{}).
			Where("store_id = ? AND status = ? AND delivery_type = ? AND assigned_driver_id IS NULL",
				storeID, models.StatusPreparing, models.DeliveryTypeDelivery).
			Order("created_at asc").
			Pluck("id", &ids).Error
		if err != nil {
			logger.Error("reconcile: pool snapshot for store %d: %v", storeID, err)
			continue
		}
		j.hub.Publish(topic, notify.Event{
			Type:    "pool_snapshot",
			Payload: map[string]interface{}{"order_ids": ids},
		})
	}
}
