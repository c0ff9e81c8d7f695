package domain

// Device maps a spoken (pref, switch) pair to a CCU datapoint.
type Device struct {
	Pref   string
	Switch string
	ISEID  string
	Name   string
}
