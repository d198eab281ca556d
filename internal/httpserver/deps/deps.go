package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linemark/internal/decoration"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/messages"
	"github.com/MrSnakeDoc/linemark/internal/scheduler"
	"github.com/MrSnakeDoc/linemark/internal/sources/file"
	"github.com/MrSnakeDoc/linemark/internal/tree"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SaveStatuser reports persistence health.
type SaveStatuser interface {
	Status() scheduler.SaveStatus
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time     // for testing, defaults to time.Now
	Ready        func() bool          // true once persisted state is loaded; nil = always ready
	AllowedHosts []string             // Host headers allowed to reach the API
	AllowedCIDRS []string             // client IPs allowed to reach the API
	TrustProxy   bool                 // true if running behind a trusted reverse proxy
	Index        *index.MemoryIndex   // bookmark store
	Redis        Pinger               // Redis store (nil when persistence is off)
	Saver        SaveStatuser         // background saver (nil when persistence is off)
	Tree         *tree.Tree           // sidebar tree adapter
	Decorations  *decoration.Provider // gutter marker adapter
	Lines        *file.Loader         // reads line text when a request omits it (nil = never read)
	Messages     *messages.Catalog    // localized notification strings
}
