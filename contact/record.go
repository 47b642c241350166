package contact

// Flattened tabular export of every contact statistic, labeled
// <side>.<region-or-total>.<statistic> with Vec3 statistics expanded into
// _x/_y/_z columns. Labels and values are index-aligned. Region names never
// collide with the built-in "total" column; the mesh rejects that name.

var recordSides = []Side{Target, Casting}

func appendStatLabels(labels []string, prefix string) []string {
	labels = append(labels,
		prefix+".contact_area",
		prefix+".mean_proximity",
		prefix+".max_proximity",
		prefix+".center_of_proximity_x",
		prefix+".center_of_proximity_y",
		prefix+".center_of_proximity_z",
		prefix+".mean_pressure",
		prefix+".max_pressure",
		prefix+".center_of_pressure_x",
		prefix+".center_of_pressure_y",
		prefix+".center_of_pressure_z",
		prefix+".contact_force_x",
		prefix+".contact_force_y",
		prefix+".contact_force_z",
		prefix+".contact_moment_x",
		prefix+".contact_moment_y",
		prefix+".contact_moment_z",
	)
	return labels
}

func appendStatValues(values []float64, s Stats) []float64 {
	values = append(values,
		s.ContactArea,
		s.MeanProximity,
		s.MaxProximity,
		s.CenterOfProximity.X,
		s.CenterOfProximity.Y,
		s.CenterOfProximity.Z,
		s.MeanPressure,
		s.MaxPressure,
		s.CenterOfPressure.X,
		s.CenterOfPressure.Y,
		s.CenterOfPressure.Z,
		s.ContactForce.X,
		s.ContactForce.Y,
		s.ContactForce.Z,
		s.ContactMoment.X,
		s.ContactMoment.Y,
		s.ContactMoment.Z,
	)
	return values
}

// RecordLabels returns the column labels of the flattened statistics
// record, index-aligned with RecordValues.
func (f *ArticularContactForce) RecordLabels() []string {
	var labels []string
	for _, side := range recordSides {
		surf := f.surface(side)
		labels = append(labels, side.String()+".total.n_contacting_tri")
		labels = appendStatLabels(labels, side.String()+".total")
		for r := 0; r < surf.NumRegions(); r++ {
			labels = appendStatLabels(labels, side.String()+"."+surf.RegionName(r))
		}
	}
	return labels
}

// RecordValues returns the current values of every statistic, realizing the
// dynamics stage if needed.
func (f *ArticularContactForce) RecordValues() []float64 {
	f.realizeDynamics()
	var values []float64
	for _, side := range recordSides {
		s := f.sides[side]
		values = append(values, float64(s.nContacting))
		values = appendStatValues(values, s.total)
		for _, rs := range s.regional {
			values = appendStatValues(values, rs)
		}
	}
	return values
}
