package events

// ModuleLoader makes sure a module is loaded. Loading an already loaded
// module must be a no-op.
type ModuleLoader interface {
	EnsureLoaded(module string) error
}

// ErrorHandler receives recoverable listener and loader failures.
// Handle must not panic.
type ErrorHandler interface {
	Handle(err error)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(err error)

// Handle implements ErrorHandler.
func (f ErrorHandlerFunc) Handle(err error) { f(err) }

// Tracer receives a nested, human-readable trace of each firing. It is
// purely observational.
type Tracer interface {
	NewLevel(label string)
	Log(msg string)
	StopLevel()
}

type nopTracer struct{}

func (nopTracer) NewLevel(string) {}
func (nopTracer) Log(string)      {}
func (nopTracer) StopLevel()      {}

// Option configures a Bus.
type Option func(*Bus)

// WithModuleLoader sets the loader used to activate modules listed in the event register.
func WithModuleLoader(l ModuleLoader) Option {
	return func(b *Bus) { b.loader = l }
}

// WithErrorHandler sets the handler for recoverable failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bus) {
		if h != nil {
			b.errHandler = h
		}
	}
}

// WithTracer sets the firing tracer.
func WithTracer(t Tracer) Option {
	return func(b *Bus) {
		if t != nil {
			b.tracer = t
		}
	}
}

// WithDefinitionSource sets where unknown event names are looked up.
func WithDefinitionSource(src DefinitionSource) Option {
	return func(b *Bus) { b.resolver.setSource(src) }
}

// WithRecoverable replaces the classifier deciding which listener errors are
// reported and skipped instead of aborting the firing. The default is IsModuleError.
func WithRecoverable(fn func(error) bool) Option {
	return func(b *Bus) {
		if fn != nil {
			b.recoverable = fn
		}
	}
}
