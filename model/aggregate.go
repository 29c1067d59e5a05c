package model

import (
	"database/sql"
	"fmt"
	"math"

	"gorm.io/gorm"
)

// UpdateAverageCost stores the mean tuition of a bootcamp's courses, rounded up
// to the next multiple of ten. A bootcamp without courses gets a null cost.
func UpdateAverageCost(tx *gorm.DB, bootcampID uint) error {
	if bootcampID == 0 {
		return nil
	}

	var avg sql.NullFloat64
	if err := tx.Model(&Course{}).
		Select("AVG(tuition)").
		Where("bootcamp_id = ?", bootcampID).
		Row().
		Scan(&avg); err != nil {
		return fmt.Errorf("average cost of bootcamp %d: %w", bootcampID, err)
	}

	var cost *float64
	if avg.Valid {
		v := math.Ceil(avg.Float64/10) * 10
		cost = &v
	}

	return tx.Model(&Bootcamp{}).
		Where("id = ?", bootcampID).
		UpdateColumn("average_cost", cost).
		Error
}

// UpdateAverageRating stores the mean rating of a bootcamp's reviews
func UpdateAverageRating(tx *gorm.DB, bootcampID uint) error {
	if bootcampID == 0 {
		return nil
	}

	var avg sql.NullFloat64
	if err := tx.Model(&Review{}).
		Select("AVG(rating)").
		Where("bootcamp_id = ?", bootcampID).
		Row().
		Scan(&avg); err != nil {
		return fmt.Errorf("average rating of bootcamp %d: %w", bootcampID, err)
	}

	var rating *float64
	if avg.Valid {
		v := avg.Float64
		rating = &v
	}

	return tx.Model(&Bootcamp{}).
		Where("id = ?", bootcampID).
		UpdateColumn("average_rating", rating).
		Error
}
