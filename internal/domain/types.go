package domain

// TaskKind selects which engine binary a job invokes.
type TaskKind string

const (
	TaskTrain    TaskKind = "train"
	TaskGenerate TaskKind = "generate"
)

// TaskKinds lists every accepted task kind.
func TaskKinds() []TaskKind {
	return []TaskKind{TaskTrain, TaskGenerate}
}

// JobStatus tracks each launch stage for a single engine job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusResolving JobStatus = "resolving"
	JobStatusLaunching JobStatus = "launching"
	JobStatusRunning   JobStatus = "running"
	JobStatusDone      JobStatus = "done"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Settings contains persisted launcher configuration.
type Settings struct {
	TrainCommand    string `json:"trainCommand"`
	GenerateCommand string `json:"generateCommand"`
	DataDir         string `json:"dataDir"`
	DictPath        string `json:"dictPath"`
	SaveDir         string `json:"saveDir"`
}

// JobConfig is one fully explicit engine invocation request. Path fields
// may contain $VAR references; they are expanded during resolution and
// never read implicitly from the environment deeper in the system.
type JobConfig struct {
	Task TaskKind `json:"task"`
	Arch string   `json:"arch"`

	DataDir     string `json:"dataDir"`
	RestoreFile string `json:"restoreFile,omitempty"`
	DictPath    string `json:"dictPath,omitempty"`
	SaveDir     string `json:"saveDir"`

	MaxSourcePositions int `json:"maxSourcePositions"`
	MaxTargetPositions int `json:"maxTargetPositions"`

	LearningRate  float64 `json:"learningRate"`
	AdamBeta1     float64 `json:"adamBeta1"`
	AdamBeta2     float64 `json:"adamBeta2"`
	AdamEps       float64 `json:"adamEps"`
	ClipNorm      float64 `json:"clipNorm"`
	WarmupUpdates int     `json:"warmupUpdates"`
	TotalUpdates  int     `json:"totalUpdates"`

	BatchSize   int `json:"batchSize"`
	UpdateFreq  int `json:"updateFreq"`
	NumWorkers  int `json:"numWorkers"`
	LogInterval int `json:"logInterval"`

	// Generation-only knobs, ignored by training invocations.
	Beam    int    `json:"beam,omitempty"`
	MinLen  int    `json:"minLen,omitempty"`
	MaxLenB int    `json:"maxLenB,omitempty"`
	Subset  string `json:"subset,omitempty"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Task   TaskKind  `json:"task"`
	Status JobStatus `json:"status"`
}
