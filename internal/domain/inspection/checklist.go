package inspection

// Checklist is the structured condition record captured at handover, grouped
// the way the inspection form presents it.
type Checklist struct {
	Exterior    ExteriorChecklist    `json:"exterior"`
	Interior    InteriorChecklist    `json:"interior"`
	Mechanical  MechanicalChecklist  `json:"mechanical"`
	Accessories AccessoriesChecklist `json:"accessories"`
	Documents   DocumentsChecklist   `json:"documents"`
}

// ExteriorChecklist covers the body of the vehicle.
type ExteriorChecklist struct {
	BodyOK      bool `json:"body_ok"`
	PaintOK     bool `json:"paint_ok"`
	WindowsOK   bool `json:"windows_ok"`
	LightsOK    bool `json:"lights_ok"`
	TiresOK     bool `json:"tires_ok"`
	MirrorsOK   bool `json:"mirrors_ok"`
	WipersOK    bool `json:"wipers_ok"`
	PlatesMatch bool `json:"plates_match"`
}

// InteriorChecklist covers the cabin.
type InteriorChecklist struct {
	SeatsOK      bool `json:"seats_ok"`
	DashboardOK  bool `json:"dashboard_ok"`
	ControlsOK   bool `json:"controls_ok"`
	ACWorking    bool `json:"ac_working"`
	AudioWorking bool `json:"audio_working"`
	Clean        bool `json:"clean"`
	NoOdor       bool `json:"no_odor"`
}

// MechanicalChecklist covers drivetrain and fluids.
type MechanicalChecklist struct {
	EngineStarts    bool `json:"engine_starts"`
	NoWarningLights bool `json:"no_warning_lights"`
	BrakesOK        bool `json:"brakes_ok"`
	SteeringOK      bool `json:"steering_ok"`
	FluidsOK        bool `json:"fluids_ok"`
	BatteryOK       bool `json:"battery_ok"`
}

// AccessoriesChecklist covers required loose equipment.
type AccessoriesChecklist struct {
	SpareTire        bool `json:"spare_tire"`
	Jack             bool `json:"jack"`
	WarningTriangle  bool `json:"warning_triangle"`
	FirstAidKit      bool `json:"first_aid_kit"`
	FireExtinguisher bool `json:"fire_extinguisher"`
	ChargingCable    bool `json:"charging_cable"`
}

// DocumentsChecklist covers the paperwork kept in the vehicle.
type DocumentsChecklist struct {
	Registration bool `json:"registration"`
	Insurance    bool `json:"insurance"`
	UserManual   bool `json:"user_manual"`
}
