// Package geo is the geodesic and geometry kernel shared by the drift
// detector and the anomaly simulator.
//
// All functions here are pure. Centroid, MedianPoint and MedianDistance
// allocate scratch slices sized to their input; the other functions do
// not allocate.
// Nothing in this package holds state or depends on gpsfix, drift, or
// simulate — it sits below all of them.
package geo
