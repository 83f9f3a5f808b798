package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type trackParcelRequest struct {
	TrackingID string `json:"tracking_id" validate:"required,min=4,max=64"`
	Name       string `json:"name"        validate:"max=128"`
}

type tokenRequest struct {
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

type tokenResponse struct {
	Token string `json:"token"`
}

// parcelEnvelope wraps the parcel attribute surface. The attribute map's key
// names are an external contract consumed by dashboards and automation, so
// parcels are rendered through domain.Parcel.Attributes rather than a
// transport struct that could drift.
type parcelEnvelope struct {
	Parcel map[string]any `json:"parcel"`
	// RefreshError is set when the record was returned but its most recent
	// refresh attempt failed; the attributes then show last-known-good data.
	RefreshError string `json:"refresh_error,omitempty"`
}

type listParcelsResponse struct {
	Data  []map[string]any `json:"data"`
	Count int              `json:"count"`
}

type refreshOutcomeResponse struct {
	TrackingID string         `json:"tracking_id"`
	Parcel     map[string]any `json:"parcel,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty"`
}

type refreshAllResponse struct {
	Attempted int                      `json:"attempted"`
	Failed    int                      `json:"failed"`
	Results   []refreshOutcomeResponse `json:"results"`
}
