package models

import (
	"time"

	"gorm.io/datatypes"
)

// TrainingRun records one model training call so the dashboard can show how
// model quality has moved over time. The fitted estimator itself lives on disk
// at ModelFile; this row is bookkeeping only.
type TrainingRun struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Stat       string         `gorm:"index;not null" json:"stat"`
	ModelKind  string         `gorm:"not null" json:"model_kind"`
	Samples    int            `json:"samples"`
	MAE        float64        `json:"mae"`
	RMSE       float64        `json:"rmse"`
	R2         float64        `json:"r2"`
	CVMAE      float64        `json:"cv_mae"`
	Importance datatypes.JSON `json:"feature_importance"`
	ModelFile  string         `json:"model_file"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (TrainingRun) TableName() string {
	return "training_runs"
}
