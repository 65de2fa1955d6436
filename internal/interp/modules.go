package interp

import (
	"github.com/esgo-lang/esgo/internal/ast"
	"github.com/esgo-lang/esgo/internal/interp/runtime"
	"github.com/esgo-lang/esgo/internal/lexer"
	"github.com/esgo-lang/esgo/internal/parser"
)

// exportBinding points one exported name at the live cell that backs it,
// which may live in a different module's Env when the export is a
// re-export (`export * from`, `export {x} from`) — spec.md §4.8's "live
// reference" requirement.
type exportBinding struct {
	env  *Environment
	name string
}

// moduleRecord is one entry of the loader's cache: per-module env,
// exports, and instantiation state for async-aware topological
// instantiation (spec.md §4.8).
type moduleRecord struct {
	id          string
	env         *Environment
	exports     map[string]exportBinding
	instantiating bool
	evaluated   bool
	isAsync     bool
	promise     *Object // non-nil once evaluation has started
}

// moduleFrame is one entry of the Interp's moduleStack of module ids,
// tracked so nested
// import/export statements know which record they're contributing to,
// and so ModuleHost.Resolve can see the importing module's id.
type moduleFrame struct {
	id string
}

// LoadModule resolves specifier against importerID, then fetches,
// parses, instantiates and evaluates the module if not already cached
// (spec.md §4.8 steps 1-6). Cycles are tolerated: a module already
// "instantiating" is returned as-is so the importer links against its
// (possibly partially populated) export table, matching ECMAScript's
// live-binding cycle semantics.
func (it *Interp) LoadModule(specifier, importerID string) (*moduleRecord, Completion) {
	if it.moduleHost == nil {
		return nil, it.throwType("no module host registered: cannot resolve %q", specifier)
	}
	id, err := it.moduleHost.Resolve(specifier, importerID)
	if err != nil {
		return nil, it.throwType("module not found: %s", err.Error())
	}
	if rec, ok := it.modules[id]; ok {
		return rec, normalC()
	}
	src, err := it.moduleHost.Load(id)
	if err != nil {
		return nil, it.throwType("failed to load module %q: %s", id, err.Error())
	}
	p := parser.New(lexer.New(src))
	prog := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, it.throwSyntax("%s", errs[0])
	}
	rec := it.newModuleRecordFor(id, prog)
	return rec, it.evalModuleProgram(rec, prog)
}

// newModuleRecordFor registers a fresh, empty moduleRecord for id in the
// loader's cache before evaluation starts, so a cyclic import observes a
// (partially populated) record instead of recursing forever.
func (it *Interp) newModuleRecordFor(id string, prog *ast.Program) *moduleRecord {
	rec := &moduleRecord{
		id:      id,
		env:     runtime.NewModuleFrame(it.Global),
		exports: map[string]exportBinding{},
	}
	rec.isAsync = containsTopLevelAwait(prog.Body)
	it.modules[id] = rec
	return rec
}

// evalModuleProgram runs prog's body against rec.env, tracking the
// current-module stack so nested import/export statements contribute to
// rec.exports (spec.md §4.8 steps 3-5).
func (it *Interp) evalModuleProgram(rec *moduleRecord, prog *ast.Program) Completion {
	rec.instantiating = true
	it.hoistDeclarations(rec.env, prog.Body)
	it.moduleStack = append(it.moduleStack, moduleFrame{id: rec.id})
	c := it.evalStatements(rec.env, prog.Body)
	it.moduleStack = it.moduleStack[:len(it.moduleStack)-1]
	rec.instantiating = false
	rec.evaluated = true
	return c
}

// containsTopLevelAwait reports whether any statement at module top level
// (not inside a nested function) is, or contains, an await expression.
// Used only to mark moduleRecord.isAsync for §4.8's "module contains
// top-level await" rule; await itself already works at module scope via
// evalAwaitExpr's top-level branch regardless of this flag.
func containsTopLevelAwait(stmts []ast.Statement) bool {
	found := false
	var walkExpr func(ast.Expression)
	var walkStmt func(ast.Statement)
	walkExpr = func(e ast.Expression) {
		if found || e == nil {
			return
		}
		if _, ok := e.(*ast.AwaitExpression); ok {
			found = true
			return
		}
		switch n := e.(type) {
		case *ast.BinaryExpression:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.LogicalExpression:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.AwaitExpression:
			walkExpr(n.Argument)
		case *ast.UnaryExpression:
			walkExpr(n.Argument)
		case *ast.ConditionalExpression:
			walkExpr(n.Test)
			walkExpr(n.Consequent)
			walkExpr(n.Alternate)
		case *ast.AssignmentExpression:
			walkExpr(n.Value)
		case *ast.SequenceExpression:
			for _, x := range n.Expressions {
				walkExpr(x)
			}
		case *ast.CallExpression:
			walkExpr(n.Callee)
			for _, a := range n.Arguments {
				walkExpr(a)
			}
		}
	}
	walkStmt = func(s ast.Statement) {
		if found || s == nil {
			return
		}
		switch n := s.(type) {
		case *ast.ExpressionStatement:
			walkExpr(n.Expression)
		case *ast.VarDeclStatement:
			for _, d := range n.Decls {
				walkExpr(d.Init)
			}
		case *ast.BlockStatement:
			for _, x := range n.Body {
				walkStmt(x)
			}
		case *ast.IfStatement:
			walkExpr(n.Test)
			walkStmt(n.Consequent)
			walkStmt(n.Alternate)
		case *ast.ForStatement:
			walkStmt(n.Body)
		case *ast.ForOfStatement:
			walkExpr(n.Right)
			walkStmt(n.Body)
		case *ast.TryStatement:
			if n.Block != nil {
				for _, x := range n.Block.Body {
					walkStmt(x)
				}
			}
		case *ast.ExportNamedDeclaration:
			walkStmt(n.Declaration)
		case *ast.ExportDefaultDeclaration:
			if e, ok := n.Declaration.(ast.Expression); ok {
				walkExpr(e)
			}
		}
	}
	for _, s := range stmts {
		walkStmt(s)
		if found {
			return true
		}
	}
	return false
}

func (it *Interp) currentModuleID() string {
	if len(it.moduleStack) == 0 {
		return ""
	}
	return it.moduleStack[len(it.moduleStack)-1].id
}

// evalImportDeclaration implements static `import` (spec.md §4.8 step
// 4): each binding is aliased to the same live cell backing the export
// in the dependency module, via Environment.AliasBinding.
func (it *Interp) evalImportDeclaration(env *Environment, n *ast.ImportDeclaration) Completion {
	rec, c := it.LoadModule(n.Source, it.currentModuleID())
	if c.IsAbrupt() {
		return c
	}
	for _, spec := range n.Specifiers {
		switch {
		case spec.Namespace:
			env.DeclareConst(spec.Local.Name)
			env.Initialize(spec.Local.Name, runtime.Object_(it.namespaceObject(rec)))
		case spec.Default:
			eb, ok := rec.exports["default"]
			if !ok {
				return it.throwSyntax("module %q has no default export", n.Source)
			}
			env.DeclareLet(spec.Local.Name)
			if !env.AliasBinding(spec.Local.Name, eb.env, eb.name) {
				return it.throwSyntax("module %q has no default export", n.Source)
			}
		default:
			eb, ok := rec.exports[spec.Imported.Name]
			if !ok {
				return it.throwSyntax("module %q has no exported member %q", n.Source, spec.Imported.Name)
			}
			env.DeclareLet(spec.Local.Name)
			if !env.AliasBinding(spec.Local.Name, eb.env, eb.name) {
				return it.throwSyntax("module %q has no exported member %q", n.Source, spec.Imported.Name)
			}
		}
	}
	return normalC()
}

// namespaceObject builds the live `import * as ns` namespace: each
// property is an accessor reading straight from the exporter's
// environment, so exporter mutations stay observable (spec.md §4.8).
func (it *Interp) namespaceObject(rec *moduleRecord) *Object {
	ns := runtime.NewObject(nil)
	for name, eb := range rec.exports {
		eb := eb
		ns.DefineOwnProperty(runtime.StringKey(name), runtime.PropertyDescriptor{
			IsAccessor: true, Enumerable: true,
			Get: it.nativeFunc("get "+name, 0, func(this Value, _ []Value) (Value, error) {
				v, err := eb.env.Get(eb.name)
				return v, err
			}),
		})
	}
	return ns
}

func (it *Interp) recordExport(env *Environment, exportName, localName string) {
	id := it.currentModuleID()
	rec := it.modules[id]
	if rec == nil {
		return
	}
	rec.exports[exportName] = exportBinding{env: env, name: localName}
}

// evalExportNamed implements `export <decl>` and `export {a, b as c}
// [from "src"]` (spec.md §4.8).
func (it *Interp) evalExportNamed(env *Environment, n *ast.ExportNamedDeclaration) Completion {
	if n.Declaration != nil {
		c := it.evalStatement(env, n.Declaration)
		if c.IsAbrupt() {
			return c
		}
		for _, name := range declaredNames(n.Declaration) {
			it.recordExport(env, name, name)
		}
		return normalC()
	}
	if n.Source != "" {
		rec, c := it.LoadModule(n.Source, it.currentModuleID())
		if c.IsAbrupt() {
			return c
		}
		for _, spec := range n.Specifiers {
			eb, ok := rec.exports[spec.Local.Name]
			if !ok {
				return it.throwSyntax("module %q has no exported member %q", n.Source, spec.Local.Name)
			}
			exportedName := spec.Local.Name
			if spec.Exported != nil {
				exportedName = spec.Exported.Name
			}
			it.modules[it.currentModuleID()].exports[exportedName] = eb
		}
		return normalC()
	}
	for _, spec := range n.Specifiers {
		exportedName := spec.Local.Name
		if spec.Exported != nil {
			exportedName = spec.Exported.Name
		}
		it.recordExport(env, exportedName, spec.Local.Name)
	}
	return normalC()
}

// evalExportDefault implements `export default <expr|decl>` (spec.md
// §4.8): the value is bound under a synthetic local name so `export
// default` can coexist with a named declaration of the same identifier.
func (it *Interp) evalExportDefault(env *Environment, n *ast.ExportDefaultDeclaration) Completion {
	const local = "*default*"
	switch d := n.Declaration.(type) {
	case *ast.FunctionLiteral:
		v, c := it.evalFunctionLiteral(env, d)
		if c.IsAbrupt() {
			return c
		}
		env.DeclareConst(local)
		env.Initialize(local, v)
		if d.Name != nil {
			env.DeclareConst(d.Name.Name)
			env.Initialize(d.Name.Name, v)
		}
	case *ast.ClassLiteral:
		v, c := it.evalClassLiteral(env, d)
		if c.IsAbrupt() {
			return c
		}
		env.DeclareConst(local)
		env.Initialize(local, v)
		if d.Name != nil {
			env.DeclareConst(d.Name.Name)
			env.Initialize(d.Name.Name, v)
		}
	case ast.Expression:
		v, c := it.evalExpression(env, d)
		if c.IsAbrupt() {
			return c
		}
		env.DeclareConst(local)
		env.Initialize(local, v)
	default:
		return it.throwSyntax("unsupported export default declaration")
	}
	it.recordExport(env, "default", local)
	return normalC()
}

// evalExportAll implements `export * [as name] from "src"` (spec.md
// §4.8), re-exporting every name of the source module transitively
// (bare `export *` omits "default").
func (it *Interp) evalExportAll(env *Environment, n *ast.ExportAllDeclaration) Completion {
	rec, c := it.LoadModule(n.Source, it.currentModuleID())
	if c.IsAbrupt() {
		return c
	}
	self := it.modules[it.currentModuleID()]
	if n.Exported != nil {
		const nsLocal = "*namespace*"
		if !rec.env.Resolve(nsLocal) {
			rec.env.DeclareConst(nsLocal)
			rec.env.Initialize(nsLocal, runtime.Object_(it.namespaceObject(rec)))
		}
		self.exports[n.Exported.Name] = exportBinding{env: rec.env, name: nsLocal}
		return normalC()
	}
	for name, eb := range rec.exports {
		if name == "default" {
			continue
		}
		self.exports[name] = eb
	}
	return normalC()
}

// declaredNames extracts the top-level binding names introduced by a
// declaration statement wrapped in `export`, for export-table bookkeeping.
func declaredNames(stmt ast.Statement) []string {
	switch n := stmt.(type) {
	case *ast.VarDeclStatement:
		var names []string
		for _, d := range n.Decls {
			names = append(names, patternNames(d.Target)...)
		}
		return names
	case *ast.FunctionLiteral:
		if n.Name != nil {
			return []string{n.Name.Name}
		}
	case *ast.ClassLiteral:
		if n.Name != nil {
			return []string{n.Name.Name}
		}
	}
	return nil
}

// evalDynamicImport implements `import(specifier)` (spec.md §4.8):
// always returns a promise, settled on the microtask queue once the
// module graph below it finishes loading.
func (it *Interp) evalDynamicImport(env *Environment, n *ast.ImportCallExpression) (Value, Completion) {
	specV, c := it.evalExpression(env, n.Argument)
	if c.IsAbrupt() {
		return Undefined, c
	}
	p := it.NewPromise()
	specifier := it.ToStringValue(specV)
	importer := it.currentModuleID()
	it.scheduler.EnqueueMicrotask(func() {
		rec, c := it.LoadModule(specifier, importer)
		if c.IsAbrupt() {
			it.RejectPromise(p, c.Value)
			return
		}
		it.ResolvePromise(p, runtime.Object_(it.namespaceObject(rec)))
	})
	return runtime.Object_(p), normalC()
}

// currentImportMeta returns (creating once) the calling module's
// import.meta object (spec.md §4.8).
func (it *Interp) currentImportMeta(env *Environment) *Object {
	id := it.currentModuleID()
	if meta, ok := it.importMetas[id]; ok {
		return meta
	}
	meta := runtime.NewObject(it.protos.object)
	url := id
	if it.moduleHost != nil {
		if u, ok := it.moduleHost.(interface{ URLFor(string) string }); ok {
			url = u.URLFor(id)
		}
	}
	meta.Set("url", runtime.String(url))
	it.importMetas[id] = meta
	return meta
}

// PreloadModule parses/instantiates/evaluates moduleID eagerly and caches
// it, for the embedding API's "pre-load a module" contract (spec.md §6).
func (it *Interp) PreloadModule(moduleID string) error {
	_, c := it.LoadModule(moduleID, "")
	if c.IsAbrupt() {
		return &ThrownValue{V: c.Value}
	}
	return nil
}
