package scoring

import (
	"fmt"
	"math"
	"strings"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/utils"
)

// MPG ceilings beyond which efficiency earns nothing extra.
const (
	efficiencyMPGCeiling = 60.0
	highwayMPGCeiling    = 40.0
	cityMPGCeiling       = 35.0
	mixedMPGCeiling      = 40.0

	excellentMPG = 50.0
	goodMPG      = 35.0
)

// Seating.
const (
	largeGroupSeats    = 7
	mediumGroupSeats   = 5
	smallGroupMax      = 4
	missingSeatPenalty = 5.0
)

// Environment and weather bonuses.
const (
	urbanElectrifiedBonus = 12.0
	urbanFWDBonus         = 4.0
	tractionBonus         = 12.0
)

// efficiency weighs the MPG figure that matters for how the shopper drives.
// The first matching branch wins.
func efficiency(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	if !v.HasMPG() {
		return c
	}

	city, highway := v.MPGCity, v.MPGHighway
	avg := (city + highway) / 2
	spread := math.Abs(city-highway) / avg

	switch {
	case in.priority == models.PriorityFuelEfficiency:
		points := math.Min(1, avg/efficiencyMPGCeiling)*20 + (1-spread)*1.2
		rounded := math.Round(avg)
		switch {
		case avg >= excellentMPG:
			c.add(points, fmt.Sprintf("Excellent fuel economy (%.0f MPG)", rounded))
		case avg >= goodMPG:
			c.add(points, fmt.Sprintf("Good fuel economy (%.0f MPG)", rounded))
		default:
			c.add(points, fmt.Sprintf("Moderate fuel economy (%.0f MPG)", rounded))
		}
	case in.dailyDrive == "long" || in.driveEnvironment == "highway":
		bonus := 0.0
		if highway > city {
			bonus = (highway - city) / 10
		}
		c.add(math.Min(1, highway/highwayMPGCeiling)*18+math.Min(bonus, 2),
			fmt.Sprintf("Good highway efficiency (%s MPG)", formatNumber(highway)))
	case in.driveEnvironment == "city":
		bonus := 0.0
		if city > highway {
			bonus = (city - highway) / 10
		}
		c.add(math.Min(1, city/cityMPGCeiling)*15+math.Min(bonus, 2),
			fmt.Sprintf("Efficient for city driving (%s MPG city)", formatNumber(city)))
	default:
		c.add(math.Min(1, avg/mixedMPGCeiling)*12+(1-spread)*1.5, "")
	}
	return c
}

// passengers rewards seating headroom and penalizes every missing seat.
func passengers(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	if in.passengers == "" {
		return c
	}

	needed, ok := utils.LeadingInt(in.passengers)
	if !ok || needed <= 0 {
		needed = 1
	}
	seats := v.SeatCount()
	extra := seats - needed

	switch {
	case strings.Contains(in.passengers, "7+") && seats >= largeGroupSeats:
		c.add(16+math.Min(float64(seats-largeGroupSeats)*0.4, 1.5),
			fmt.Sprintf("Perfect for %s passengers", in.passengers))
	case strings.Contains(in.passengers, "5-6") && seats >= mediumGroupSeats:
		if seats >= 6 {
			c.add(14+1.2, fmt.Sprintf("Comfortable seating for %s", in.passengers))
		} else {
			c.add(14+0.4, fmt.Sprintf("Adequate seating for %s", in.passengers))
		}
	case needed <= smallGroupMax && seats >= needed:
		points := 12 + math.Min(float64(extra)*0.6, 2.5)
		if extra >= 2 {
			c.add(points, "Spacious with extra seating capacity")
		} else {
			c.add(points, "Adequate seating capacity")
		}
	case seats < needed:
		c.add(-float64(needed-seats)*missingSeatPenalty,
			fmt.Sprintf("May not accommodate all %d passengers", needed))
	default:
		c.add(3+math.Min(float64(extra)*0.5, 2), "")
	}
	return c
}

// environment adds independent bonuses for where and in what weather the shopper drives.
func environment(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution

	switch in.driveEnvironment {
	case "city", "suburbs":
		if v.IsElectrified() {
			c.add(urbanElectrifiedBonus, "Ideal for city/suburban driving")
		}
		if v.Drivetrain == models.DrivetrainFWD {
			c.add(urbanFWDBonus, "")
		}
	case "rural":
		if v.HasAllWheelTraction() {
			c.add(tractionBonus, "AWD/4WD for rural conditions")
		}
	}

	if (in.weather == "snowy" || in.weather == "rainy") && v.HasAllWheelTraction() {
		c.add(tractionBonus, fmt.Sprintf("AWD for %s weather", in.weather))
	}
	return c
}
