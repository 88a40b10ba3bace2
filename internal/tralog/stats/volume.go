package stats

import (
	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
)

// VolumeByType holds per-type volumes: kg*reps for weight, reps for
// bodyweight, seconds for time and distance units for distance.
type VolumeByType struct {
	Weight     float64 `json:"weight"`
	Bodyweight float64 `json:"bodyweight"`
	Time       float64 `json:"time"`
	Distance   float64 `json:"distance"`
}

func (v *VolumeByType) Add(t records.MenuType, volume float64) {
	switch t {
	case records.MenuTypeWeight:
		v.Weight += volume
	case records.MenuTypeBodyweight:
		v.Bodyweight += volume
	case records.MenuTypeTime:
		v.Time += volume
	case records.MenuTypeDistance:
		v.Distance += volume
	}
}

func (v VolumeByType) Sub(other VolumeByType) VolumeByType {
	return VolumeByType{
		Weight:     v.Weight - other.Weight,
		Bodyweight: v.Bodyweight - other.Bodyweight,
		Time:       v.Time - other.Time,
		Distance:   v.Distance - other.Distance,
	}
}

// Volume sums the sets' contributions for the given type. Only strictly
// positive inputs contribute, so the result is never negative.
func Volume(t records.MenuType, sets []records.Set) float64 {
	var total float64
	for _, s := range sets {
		switch t {
		case records.MenuTypeWeight:
			if s.Weight.Positive() && s.Reps.Positive() {
				total += s.Weight.Float() * s.Reps.Float()
			}
		case records.MenuTypeBodyweight:
			if s.Reps.Positive() {
				total += s.Reps.Float()
			}
		case records.MenuTypeTime:
			total += s.Seconds()
		case records.MenuTypeDistance:
			if s.Distance.Positive() {
				total += s.Distance.Float()
			}
		}
	}
	return total
}

// WeightVolume is the weight-type volume of a whole workout, the value stored
// as a workout's totalVolume.
func WeightVolume(exercises []records.Exercise) float64 {
	var total float64
	for _, ex := range exercises {
		if ResolveType(ex) != records.MenuTypeWeight {
			continue
		}
		total += Volume(records.MenuTypeWeight, ex.Sets)
	}
	return total
}
