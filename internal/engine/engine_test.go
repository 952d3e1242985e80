package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/transform"
)

func testUniverseDoc() *scenario.UniverseDescription {
	return &scenario.UniverseDescription{
		Version: "1.0",
		Frames: []scenario.FrameDef{
			{Name: "ICRF", Type: "inertial"},
			{Name: "ITRF", Type: "bodyFixed", Body: "Earth"},
		},
		Bodies:  []scenario.BodyDef{{Name: "Earth", Gravity: []string{"EarthGM"}}},
		Gravity: []scenario.GravityDef{{Name: "EarthGM", Type: "point", Mu: "398600.4418 km^3/s^2"}},
		Dynamics: []scenario.DynamicsDef{
			{Name: "EMS_combined", Type: "combined", Gravity: []string{"EarthGM"}},
		},
	}
}

// testTrajectoryDoc materializes a document from a circular inertial state,
// expressed in the Earth-fixed frame the way generated scenarios are.
func testTrajectoryDoc(t *testing.T) *scenario.Description {
	t.Helper()
	inertial := circularState(7000)
	itrf := transform.TEMEToITRF(inertial, epoch)
	return scenario.NewTLEDescription(itrf, epoch, "UTC")
}

func TestLoadRejectsBadUniverse(t *testing.T) {
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrConfig)

	doc := testUniverseDoc()
	doc.Bodies = nil
	_, err = Load(doc)
	assert.ErrorIs(t, err, ErrConfig)

	doc = testUniverseDoc()
	doc.Frames = []scenario.FrameDef{{Name: "ITRF", Type: "bodyFixed", Body: "Earth"}}
	_, err = Load(doc)
	assert.ErrorIs(t, err, ErrConfig, "no inertial frame")

	doc = testUniverseDoc()
	doc.Gravity[0].Mu = "heavy"
	_, err = Load(doc)
	assert.ErrorIs(t, err, ErrConfig, "unparseable mu")
}

func TestNewTrajectoryValidatesAgainstUniverse(t *testing.T) {
	uni, err := Load(testUniverseDoc())
	require.NoError(t, err)

	doc := testTrajectoryDoc(t)
	doc.Timeline[0].State[0].Axes = "GCRF"
	_, err = NewTrajectory(uni, doc)
	assert.ErrorIs(t, err, ErrConfig, "undeclared axes")

	doc = testTrajectoryDoc(t)
	doc.Timeline[0].State[0].Dynamics = "point_mass_only"
	_, err = NewTrajectory(uni, doc)
	assert.ErrorIs(t, err, ErrConfig, "undeclared dynamics")

	doc = testTrajectoryDoc(t)
	doc.Timeline[0].State[0].Body = "Mars"
	_, err = NewTrajectory(uni, doc)
	assert.ErrorIs(t, err, ErrConfig, "wrong central body")
}

func TestComputeAndRange(t *testing.T) {
	uni, err := Load(testUniverseDoc())
	require.NoError(t, err)

	tra, err := NewTrajectory(uni, testTrajectoryDoc(t))
	require.NoError(t, err)

	_, _, err = tra.Range()
	assert.ErrorIs(t, err, ErrNotComputed)

	require.NoError(t, tra.Compute(false))

	start, end, err := tra.Range()
	require.NoError(t, err)
	assert.True(t, start.Equal(epoch))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, "SC_center", tra.Point())
}

func TestComputeRejectsCorruptState(t *testing.T) {
	uni, err := Load(testUniverseDoc())
	require.NoError(t, err)

	doc := testTrajectoryDoc(t)
	doc.Timeline[0].State[0].Value.PosX = "NaN furlongs"
	tra, err := NewTrajectory(uni, doc)
	require.NoError(t, err)

	err = tra.Compute(false)
	assert.ErrorIs(t, err, ErrCompute)
}

func TestVector3Frames(t *testing.T) {
	uni, err := Load(testUniverseDoc())
	require.NoError(t, err)
	tra, err := NewTrajectory(uni, testTrajectoryDoc(t))
	require.NoError(t, err)
	require.NoError(t, tra.Compute(false))

	start, end, err := tra.Range()
	require.NoError(t, err)

	for _, ts := range []time.Time{start, start.Add(37 * time.Minute), end} {
		icrf, err := uni.Vector3("Earth", "SC_center", "ICRF", ts)
		require.NoError(t, err)
		itrf, err := uni.Vector3("Earth", "SC_center", "ITRF", ts)
		require.NoError(t, err)

		// The circular orbit keeps its radius, and frame rotation
		// preserves magnitude.
		assert.InDelta(t, 7000, icrf.Norm(), 1e-6)
		assert.InDelta(t, icrf.Norm(), itrf.Norm(), 1e-9)
	}

	// The ITRF and ICRF vectors differ by the GMST rotation angle.
	icrf, _ := uni.Vector3("Earth", "SC_center", "ICRF", start)
	itrf, _ := uni.Vector3("Earth", "SC_center", "ITRF", start)
	angle := math.Atan2(icrf.Y, icrf.X) - math.Atan2(itrf.Y, itrf.X)
	assert.InDelta(t, normalizeAngle(transform.GMST(start)), normalizeAngle(angle), 1e-9)
}

func TestVector3QueryErrors(t *testing.T) {
	uni, err := Load(testUniverseDoc())
	require.NoError(t, err)
	tra, err := NewTrajectory(uni, testTrajectoryDoc(t))
	require.NoError(t, err)
	require.NoError(t, tra.Compute(false))

	_, err = uni.Vector3("Mars", "SC_center", "ICRF", epoch)
	assert.ErrorIs(t, err, ErrQuery)

	_, err = uni.Vector3("Earth", "SC_center", "GCRF", epoch)
	assert.ErrorIs(t, err, ErrQuery)

	_, err = uni.Vector3("Earth", "ghost", "ICRF", epoch)
	assert.ErrorIs(t, err, ErrQuery)
}
