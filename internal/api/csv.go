package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/orbitviz/trajgo/internal/model"
)

// renderCSV flattens a trajectory result into CSV rows. The longitude and
// latitude columns appear when any point carries a ground track; points
// lacking one leave those cells empty. One row per point, so the row count
// always matches point_count.
func renderCSV(result model.TrajectoryResult) string {
	withGroundTrack := false
	for _, p := range result.Points {
		if p.Spherical != nil {
			withGroundTrack = true
			break
		}
	}

	var sb strings.Builder
	if withGroundTrack {
		sb.WriteString("epoch,mjd,x,y,z,longitude,latitude\n")
	} else {
		sb.WriteString("epoch,mjd,x,y,z\n")
	}

	for _, p := range result.Points {
		sb.WriteString(p.Epoch)
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(p.MJD, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(p.Cartesian.X, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(p.Cartesian.Y, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(p.Cartesian.Z, 'f', -1, 64))
		if withGroundTrack {
			sb.WriteByte(',')
			if p.Spherical != nil {
				sb.WriteString(strconv.FormatFloat(p.Spherical.Longitude, 'f', -1, 64))
				sb.WriteByte(',')
				sb.WriteString(strconv.FormatFloat(p.Spherical.Latitude, 'f', -1, 64))
			} else {
				sb.WriteByte(',')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeCSV(w http.ResponseWriter, result model.TrajectoryResult) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trajectory.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(renderCSV(result)))
}
