package domain

import "time"

// ActiveMode identifies the single exclusive owner of microphone routing
// and command eligibility. At most one mode is active at any instant.
type ActiveMode string

const (
	ModeNone         ActiveMode = "none"
	ModeBackendMic   ActiveMode = "backend_mic"
	ModeMetronome    ActiveMode = "metronome"
	ModeBackingTrack ActiveMode = "backing_track"
)

// TranscriptKind identifies whether a recognizer event is partial or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent represents incremental recognition output. Many partial
// events precede exactly one final event per utterance.
type TranscriptEvent struct {
	Kind       TranscriptKind `json:"kind"`
	Text       string         `json:"text"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// IntentKind tags a classified voice command.
type IntentKind string

const (
	IntentUnrecognized    IntentKind = "unrecognized"
	IntentMicOn           IntentKind = "mic_on"
	IntentMicOff          IntentKind = "mic_off"
	IntentStop            IntentKind = "stop"
	IntentPause           IntentKind = "pause"
	IntentPlay            IntentKind = "play"
	IntentSave            IntentKind = "save"
	IntentStartMetronome  IntentKind = "start_metronome"
	IntentSetBpm          IntentKind = "set_bpm"
	IntentDescribeBacking IntentKind = "describe_backing_track"
	IntentShowDisplay     IntentKind = "show_display"
	IntentCloseDisplay    IntentKind = "close_display"
	IntentTransportSeek   IntentKind = "transport_seek"
	IntentTransportAction IntentKind = "transport_action"
)

// TransportActionKind names the discrete playback-transport actions.
type TransportActionKind string

const (
	TransportPause   TransportActionKind = "pause"
	TransportPlay    TransportActionKind = "play"
	TransportStop    TransportActionKind = "stop"
	TransportRestart TransportActionKind = "restart"
	TransportSkip    TransportActionKind = "skip"
)

// SeekDirection is the direction of a transport seek.
type SeekDirection string

const (
	SeekBack    SeekDirection = "back"
	SeekForward SeekDirection = "forward"
)

// CommandIntent is the classifier output consumed by the arbiter. Only the
// fields relevant to Kind are populated; it is never persisted.
type CommandIntent struct {
	Kind IntentKind `json:"kind"`

	// BPM carries the tempo for StartMetronome/SetBpm.
	BPM int `json:"bpm,omitempty"`
	// Text carries the payload for DescribeBackingTrack/ShowDisplay. An
	// empty payload on a wake-word intent defers to follow-up capture.
	Text string `json:"text,omitempty"`

	SeekSeconds   int                 `json:"seekSeconds,omitempty"`
	SeekDirection SeekDirection       `json:"seekDirection,omitempty"`
	Transport     TransportActionKind `json:"transport,omitempty"`
}

// CaptureKind identifies which payload a pending follow-up capture expects.
type CaptureKind string

const (
	CaptureNone               CaptureKind = ""
	CaptureBackingDescription CaptureKind = "backing_description"
	CaptureDisplayDescription CaptureKind = "display_description"
	CaptureMetronomeBpm       CaptureKind = "metronome_bpm"
)

// AckKind selects the acknowledgment tone pair: ascending for acceptance
// and mode entry, descending for rejection, exit, and capture timeout.
type AckKind string

const (
	AckAccept AckKind = "accept"
	AckReject AckKind = "reject"
)

// ErrorCode identifies non-fatal backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup    ErrorCode = "startup"
	ErrorCodeRecognizer ErrorCode = "recognizer"
	ErrorCodeAudio      ErrorCode = "audio"
	ErrorCodeBacking    ErrorCode = "backing"
	ErrorCodeTransport  ErrorCode = "transport"
)

// Status summarizes the engine state for the UI.
type Status struct {
	VoiceEnabled    bool        `json:"voiceEnabled"`
	Mode            ActiveMode  `json:"mode"`
	MicEnabled      bool        `json:"micEnabled"`
	PendingCapture  CaptureKind `json:"pendingCapture,omitempty"`
	TransportActive bool        `json:"transportActive"`
}

// BPM bounds accepted by the classifier. Out-of-range numbers are rejected,
// not clamped; clamping happens in the metronome sink.
const (
	MinBPM = 40
	MaxBPM = 240
)

// MaxSeekSeconds caps parsed transport seek durations.
const MaxSeekSeconds = 3600

// DefaultSeekSeconds is used for bare "rewind"/"forward" commands.
const DefaultSeekSeconds = 15
