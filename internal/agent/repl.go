package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"
)

// promptPrefixUnicode uses mathematical bold letters for mcpweb branding in
// the REPL prompt. Used when the terminal supports unicode.
const promptPrefixUnicode = "𝗺𝘄"

// promptPrefixASCII is the fallback prefix for terminals without unicode support.
const promptPrefixASCII = "mw"

// promptChevronUnicode is the guillemet separator used in the prompt.
const promptChevronUnicode = "»"

// promptChevronASCII is the fallback chevron for terminals without unicode support.
const promptChevronASCII = ">"

// commandExecutionTimeout is the timeout for individual REPL command
// execution. Generous because invoke_action may suspend on an elicitation
// prompt waiting for the user.
const commandExecutionTimeout = 5 * time.Minute

// errExit signals that the user asked to leave the REPL.
var errExit = errors.New("exit")

// REPL is an interactive shell for exploring a running mcpweb gateway. It
// wraps the agent client with readline-based line editing, command history,
// tab completion over service names, and table rendering of listings.
type REPL struct {
	client           *Client
	logger           *Logger
	rl               *readline.Instance
	notificationChan chan mcp.JSONRPCNotification
	stopChan         chan struct{}
	wg               sync.WaitGroup
	useUnicode       bool
	mu               sync.RWMutex
	serviceNames     []string
}

// NewREPL creates a new REPL instance over the given client. The client is
// connected by Run, not here.
func NewREPL(client *Client, logger *Logger) *REPL {
	return &REPL{
		client:           client,
		logger:           logger,
		notificationChan: make(chan mcp.JSONRPCNotification, 10),
		stopChan:         make(chan struct{}),
		useUnicode:       detectUnicodeSupport(),
	}
}

// detectUnicodeSupport checks if the terminal likely supports unicode characters.
// Returns true for most modern terminals, false for dumb terminals or when uncertain.
func detectUnicodeSupport() bool {
	term := os.Getenv("TERM")
	lang := os.Getenv("LANG")
	lcAll := os.Getenv("LC_ALL")

	// Dumb terminals or no terminal don't support unicode
	if term == "" || term == "dumb" {
		return false
	}

	// Check for UTF-8 in locale settings
	for _, v := range []string{lang, lcAll} {
		if strings.Contains(strings.ToLower(v), "utf-8") || strings.Contains(strings.ToLower(v), "utf8") {
			return true
		}
	}

	// Common terminals that support unicode
	unicodeTerminals := []string{"xterm", "screen", "tmux", "alacritty", "kitty", "iterm"}
	termLower := strings.ToLower(term)
	for _, ut := range unicodeTerminals {
		if strings.Contains(termLower, ut) {
			return true
		}
	}

	// Default to true for most modern environments
	return true
}

// buildPrompt creates the REPL prompt, falling back to ASCII characters when
// the terminal doesn't support unicode.
func (r *REPL) buildPrompt() string {
	if r.useUnicode {
		return promptPrefixUnicode + " " + promptChevronUnicode + " "
	}
	return promptPrefixASCII + " " + promptChevronASCII + " "
}

// Run connects the client and enters the main interaction loop. It returns
// on context cancellation, EOF, or an explicit exit command.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	defer r.client.Close()

	// Route client notifications into the REPL for transports that deliver them
	if r.client.SupportsNotifications() && r.client.NotificationChan != nil {
		go func() {
			for notification := range r.client.NotificationChan {
				select {
				case r.notificationChan <- notification:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	historyFile := filepath.Join(os.TempDir(), ".mcpweb_agent_history")
	config := &readline.Config{
		Prompt:          r.buildPrompt(),
		HistoryFile:     historyFile,
		AutoComplete:    r.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	// Load service names for tab completion
	r.refreshServices(ctx)

	if r.client.SupportsNotifications() {
		r.wg.Add(1)
		go r.notificationListener(ctx)
	}
	r.logger.Info("mcpweb REPL started. Type 'help' for available commands. Use TAB for completion.")
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			r.logger.Info("REPL shutting down...")
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			r.shutdown()
			r.logger.Info("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := r.executeCommand(input); err != nil {
			if errors.Is(err, errExit) {
				r.shutdown()
				r.logger.Info("Goodbye!")
				return nil
			}
			r.logger.Error("Error: %v", err)
		}

		fmt.Println()
	}
}

// connect dials the gateway, showing a spinner while the handshake runs.
// A few retries cover standalone mode, where the gateway may still be
// binding its listener when the REPL starts.
func (r *REPL) connect(ctx context.Context) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Connecting to mcpweb gateway..."
	s.Start()

	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				s.Stop()
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
		if err = r.client.Connect(ctx); err == nil {
			break
		}
	}
	s.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", text.FgRed.Sprint("Failed to connect to mcpweb gateway"))
		return err
	}

	r.logger.Success("Connected to %s", r.client.GetEndpoint())
	return nil
}

func (r *REPL) shutdown() {
	if r.client.SupportsNotifications() {
		close(r.stopChan)
		r.wg.Wait()
	}
}

// executeCommand parses and dispatches one line of input. Each command runs
// under its own timeout so a hung gateway call can't wedge the loop forever.
func (r *REPL) executeCommand(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	if command == "?" {
		command = "help"
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandExecutionTimeout)
	defer cancel()

	switch command {
	case "help":
		r.printHelp()
		return nil
	case "services":
		return r.cmdServices(ctx)
	case "resources":
		return r.cmdResources(ctx, args)
	case "get":
		return r.cmdGet(ctx, args)
	case "search":
		return r.cmdSearch(ctx, args)
	case "invoke":
		return r.cmdInvoke(ctx, args)
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}
}

func (r *REPL) printHelp() {
	r.logger.OutputLine("Available commands:")
	r.logger.OutputLine("  services                   List services registered with the gateway")
	r.logger.OutputLine("  resources <service>        Show a service's instructions and resources")
	r.logger.OutputLine("  get <address>              Fetch a resource, e.g. get mcpweb://email/inbox")
	r.logger.OutputLine("  search <scope> <query>     Search resources within a service")
	r.logger.OutputLine("  invoke <action> <address>  Invoke an action against a resource")
	r.logger.OutputLine("  help, ?                    Show this help")
	r.logger.OutputLine("  exit, quit                 Leave the REPL")
}

func (r *REPL) cmdServices(ctx context.Context) error {
	listing, err := r.client.ListServices(ctx)
	if err != nil {
		return err
	}

	renderServiceTable(os.Stdout, listing.Services)
	r.setServiceNames(listing.Services)
	return nil
}

func (r *REPL) cmdResources(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: resources <service>")
	}

	discovery, err := r.client.ListResources(ctx, args[0])
	if err != nil {
		return err
	}

	if discovery.Instructions != "" {
		r.logger.OutputLine("%s", discovery.Instructions)
		r.logger.OutputLine("")
	}
	renderResourceTable(os.Stdout, discovery.Resources)
	return nil
}

func (r *REPL) cmdGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get <address>")
	}

	content, err := r.client.GetResource(ctx, args[0])
	if err != nil {
		return err
	}

	r.logger.OutputLine("%s", PrettyJSON(content))
	return nil
}

func (r *REPL) cmdSearch(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: search <scope> <query>")
	}

	scope := args[0]
	query := strings.Join(args[1:], " ")

	addresses, err := r.client.SearchResources(ctx, scope, query)
	if err != nil {
		return err
	}

	renderAddressList(os.Stdout, addresses)
	return nil
}

func (r *REPL) cmdInvoke(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: invoke <action> <address>")
	}

	result, err := r.client.InvokeAction(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	r.logger.OutputLine("%s", PrettyJSON(result))
	return nil
}

// refreshServices loads the service list for tab completion. Failures only
// cost completion, so they are logged and swallowed.
func (r *REPL) refreshServices(ctx context.Context) {
	listing, err := r.client.ListServices(ctx)
	if err != nil {
		r.logger.Debug("Failed to load service list for completion: %v", err)
		return
	}
	r.setServiceNames(listing.Services)
}

func (r *REPL) setServiceNames(services []ServiceInfo) {
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}

	r.mu.Lock()
	r.serviceNames = names
	r.mu.Unlock()

	if r.rl != nil {
		r.rl.Config.AutoComplete = r.createCompleter()
	}
}

func (r *REPL) completeServiceNames(string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.serviceNames))
	copy(names, r.serviceNames)
	return names
}

// createCompleter builds the tab completion tree. Service-taking commands
// complete against the cached service list.
func (r *REPL) createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("?"),
		readline.PcItem("services"),
		readline.PcItem("resources", readline.PcItemDynamic(r.completeServiceNames)),
		readline.PcItem("get"),
		readline.PcItem("search", readline.PcItemDynamic(r.completeServiceNames)),
		readline.PcItem("invoke"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// notificationListener displays server notifications without corrupting the
// readline prompt. Only started for transports that support notifications.
func (r *REPL) notificationListener(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case notification := <-r.notificationChan:
			// Temporarily pause readline for clean notification display
			if r.rl != nil {
				r.rl.Stdout().Write([]byte("\r\033[K"))
			}

			r.logger.Notification(notification.Method, notification.Params)

			if r.rl != nil {
				r.rl.Refresh()
			}
		}
	}
}

// filterInput filters input characters for readline
func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
