package syntax

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// solidityLexer tokenizes Solidity. Rules are tried in order, so comments
// and strings come before punctuation and keywords before identifiers.
// Contextual words (from, as, error, revert, global, units) stay identifiers.
var solidityLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `(?:hex|unicode)?"(?:\\.|[^"\\])*"|(?:hex|unicode)?'(?:\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `0[xX][0-9a-fA-F_]+|[0-9][0-9_]*(?:\.[0-9][0-9_]*)?(?:[eE]-?[0-9_]+)?|\.[0-9][0-9_]*(?:[eE]-?[0-9_]+)?`},
	{Name: "Keyword", Pattern: `(?:pragma|import|contract|interface|library|abstract|is|using|for|struct|enum|type|event|function|modifier|constructor|fallback|receive|returns|return|if|else|while|do|break|continue|emit|try|catch|new|delete|public|private|internal|external|pure|view|payable|virtual|override|constant|immutable|memory|storage|calldata|indexed|anonymous|mapping|assembly|unchecked|true|false)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Brace", Pattern: `[{}]`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Punct", Pattern: `>>>=|>>>|>>=|<<=|>>|<<|\*\*|&&|\|\||==|!=|<=|>=|\+\+|--|\+=|-=|\*=|/=|%=|&=|\|=|\^=|=>|:=|[-+*/%&|^!~<>=?:,.()\[\]]`},
})

// maxLookahead bounds backtracking between grammar alternatives. Statements
// such as "a.b.c[i] = x;" are only told apart from declarations late.
const maxLookahead = 1024

var solidityParser = participle.MustBuild[sourceUnit](
	participle.Lexer(solidityLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(maxLookahead),
)

type sourceUnit struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Items []*topLevel `@@*`
}

type topLevel struct {
	Pragma    *pragma        `  @@`
	Import    *importDecl    `| @@`
	Contract  *contractDecl  `| @@`
	Using     *usingDecl     `| @@`
	Struct    *structDecl    `| @@`
	Enum      *enumDecl      `| @@`
	ValueType *valueTypeDecl `| @@`
	Error     *errorDecl     `| @@`
	Event     *eventDecl     `| @@`
	Function  *functionDecl  `| @@`
	StateVar  *stateVarDecl  `| @@`
}

type ident struct {
	Pos  lexer.Position
	Name string `@Ident`
}

type memberName struct {
	Pos  lexer.Position
	Name string `@(Ident | Keyword)`
}

type pragma struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Words []string `"pragma" @(Ident | Number | String | Punct | Keyword)* ";"`
}

type importDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Path      string          `"import" ( @String`
	UnitAlias *ident          `          ( "as" @@ )?`
	StarAlias *ident          `        | "*" "as" @@ "from"`
	StarPath  string          `          @String`
	Symbols   []*importSymbol `        | "{" @@ ( "," @@ )* "}" "from"`
	FromPath  string          `          @String ) ";"`
}

type importSymbol struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Symbol *ident `@@`
	Alias  *ident `( "as" @@ )?`
}

type identPath struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Segments []*ident `@@ ( "." @@ )*`
}

type contractDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Abstract bool            `@"abstract"?`
	Kind     string          `@( "contract" | "interface" | "library" )`
	Name     *ident          `@@`
	Bases    []*inheritance  `( "is" @@ ( "," @@ )* )?`
	Parts    []*contractPart `"{" @@* "}"`
}

type inheritance struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Path *identPath `@@`
	Args *callArgs  `@@?`
}

type contractPart struct {
	Using     *usingDecl     `  @@`
	Struct    *structDecl    `| @@`
	Enum      *enumDecl      `| @@`
	ValueType *valueTypeDecl `| @@`
	Event     *eventDecl     `| @@`
	Error     *errorDecl     `| @@`
	Function  *functionDecl  `| @@`
	Modifier  *modifierDecl  `| @@`
	StateVar  *stateVarDecl  `| @@`
}

type usingDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Library  *identPath   `"using" ( @@`
	Funcs    []*usingFunc `        | "{" @@ ( "," @@ )* "}" )`
	Wildcard bool         `"for" ( @"*"`
	Target   *typeName    `      | @@ )`
	Global   bool         `@"global"? ";"`
}

type usingFunc struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Path     *identPath `@@`
	Operator string     `( "as" @Punct )?`
}

type structDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name   *ident         `"struct" @@`
	Fields []*structField `"{" @@* "}"`
}

type structField struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Type *typeName `@@`
	Name *ident    `@@ ";"`
}

type enumDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name   *ident   `"enum" @@`
	Values []*ident `"{" ( @@ ( "," @@ )* )? "}"`
}

type valueTypeDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name       *ident    `"type" @@ "is"`
	Underlying *typeName `@@ ";"`
}

type eventDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name      *ident       `"event" @@`
	Params    []*parameter `"(" ( @@ ( "," @@ )* )? ")"`
	Anonymous bool         `@"anonymous"? ";"`
}

type errorDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name   *ident       `"error" @@`
	Params []*parameter `"(" ( @@ ( "," @@ )* )? ")" ";"`
}

type parameter struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Type     *typeName `@@`
	Indexed  bool      `@"indexed"?`
	Location string    `@( "memory" | "storage" | "calldata" )?`
	Name     *ident    `@@?`
}

type functionDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Kind    string          `@( "function" | "constructor" | "fallback" | "receive" )`
	Name    *ident          `@@?`
	Params  []*parameter    `"(" ( @@ ( "," @@ )* )? ")"`
	Attrs   []*functionAttr `@@*`
	Returns []*parameter    `( "returns" "(" ( @@ ( "," @@ )* )? ")" )?`
	Body    *block          `( @@ | ";" )`
}

type functionAttr struct {
	Keyword  string              `  @( "public" | "private" | "internal" | "external" | "pure" | "view" | "payable" | "virtual" | "constant" )`
	Override *overrideSpec       `| @@`
	Modifier *modifierInvocation `| @@`
}

type overrideSpec struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Bases []*identPath `"override" ( "(" @@ ( "," @@ )* ")" )?`
}

type modifierInvocation struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Path *identPath `@@`
	Args *callArgs  `@@?`
}

type modifierDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name     *ident          `"modifier" @@`
	Params   []*parameter    `( "(" ( @@ ( "," @@ )* )? ")" )?`
	Virtual  bool            `( @"virtual"`
	Override []*overrideSpec `| @@ )*`
	Body     *block          `( @@ | ";" )`
}

type stateVarDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Type     *typeName       `@@`
	Attrs    []string        `( @( "public" | "private" | "internal" | "constant" | "immutable" | "transient" )`
	Override []*overrideSpec `| @@ )*`
	Name     *ident          `@@`
	Value    *expression     `( "=" @@ )? ";"`
}

type typeName struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Mapping  *mappingType  `( @@`
	Function *functionType `| @@`
	Path     *identPath    `| @@ )`
	Payable  bool          `@"payable"?`
	Dims     []*arrayDim   `@@*`
}

type arrayDim struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Length *expression `"[" @@? "]"`
}

type mappingType struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Key       *typeName `"mapping" "(" @@`
	KeyName   *ident    `@@?`
	Value     *typeName `"=>" @@`
	ValueName *ident    `@@? ")"`
}

type functionType struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Params  []*parameter `"function" "(" ( @@ ( "," @@ )* )? ")"`
	Attrs   []string     `@( "internal" | "external" | "pure" | "view" | "payable" )*`
	Returns []*parameter `( "returns" "(" ( @@ ( "," @@ )* )? ")" )?`
}

// Statements.

type block struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Unchecked  bool         `@"unchecked"?`
	Statements []*statement `"{" @@* "}"`
}

type statement struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Block     *block         `  @@`
	If        *ifStmt        `| @@`
	For       *forStmt       `| @@`
	While     *whileStmt     `| @@`
	DoWhile   *doWhileStmt   `| @@`
	Return    *returnStmt    `| @@`
	Emit      *emitStmt      `| @@`
	Revert    *revertStmt    `| @@`
	Try       *tryStmt       `| @@`
	Assembly  *assemblyStmt  `| @@`
	Break     bool           `| @"break" ";"`
	Continue  bool           `| @"continue" ";"`
	TupleDecl *tupleDeclStmt `| @@`
	VarDecl   *varDeclStmt   `| @@`
	Expr      *exprStmt      `| @@`
}

type ifStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Cond *expression `"if" "(" @@ ")"`
	Then *statement  `@@`
	Else *statement  `( "else" @@ )?`
}

type forStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Init *simpleStmt `"for" "(" ( @@ | ";" )`
	Cond *expression `@@? ";"`
	Post *expression `@@? ")"`
	Body *statement  `@@`
}

type simpleStmt struct {
	TupleDecl *tupleDeclStmt `  @@`
	VarDecl   *varDeclStmt   `| @@`
	Expr      *exprStmt      `| @@`
}

type whileStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Cond *expression `"while" "(" @@ ")"`
	Body *statement  `@@`
}

type doWhileStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Body *statement  `"do" @@`
	Cond *expression `"while" "(" @@ ")" ";"`
}

type returnStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Value *expression `"return" @@? ";"`
}

type emitStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Event *expression `"emit" @@ ";"`
}

type revertStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Error *expression `"revert" @@ ";"`
}

type tryStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Call    *expression    `"try" @@`
	Returns *returnsClause `@@?`
	Body    *block         `@@`
	Catches []*catchClause `@@+`
}

type returnsClause struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Params []*parameter `"returns" "(" ( @@ ( "," @@ )* )? ")"`
}

type catchClause struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name   *ident       `"catch" ( @@?`
	Params []*parameter `  "(" ( @@ ( "," @@ )* )? ")" )?`
	Body   *block       `@@`
}

type assemblyStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Dialect string        `"assembly" @String?`
	Flags   []string      `( "(" @String ( "," @String )* ")" )?`
	Body    *assemblyBody `@@`
}

type assemblyBody struct {
	Items []*assemblyItem `"{" @@* "}"`
}

type assemblyItem struct {
	Nested *assemblyBody `  @@`
	Word   string        `| @( Ident | Number | String | Punct | Keyword | Semi )`
}

type varDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Type     *typeName `@@`
	Location string    `@( "memory" | "storage" | "calldata" )?`
	Name     *ident    `@@`
}

type varDeclStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Decl  *varDecl    `@@`
	Value *expression `( "=" @@ )? ";"`
}

type tupleDeclStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Decls []*varDecl  `"(" @@? ( "," @@? )* ")"`
	Value *expression `"=" @@ ";"`
}

type exprStmt struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Expr *expression `@@ ";"`
}

// Expressions. Binary operators are parsed flat and folded by precedence
// during lowering.

type expression struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Head *unary        `@@`
	Tail []*binaryTail `@@*`
}

type binaryTail struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Op      string `@( "=" | "|=" | "^=" | "&=" | "<<=" | ">>=" | ">>>=" | "+=" | "-=" | "*=" | "/=" | "%=" | "?" | ":" | "||" | "&&" | "==" | "!=" | "<" | ">" | "<=" | ">=" | "|" | "^" | "&" | "<<" | ">>" | ">>>" | "+" | "-" | "*" | "/" | "%" | "**" )`
	Operand *unary `@@`
}

type unary struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Op      string   `  @( "!" | "~" | "-" | "+" | "++" | "--" | "delete" )`
	Inner   *unary   `  @@`
	Operand *postfix `| @@`
}

type postfix struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Primary *primary     `@@`
	Ops     []*postfixOp `@@*`
}

type postfixOp struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Member  *memberName `  "." @@`
	Index   *indexOp    `| @@`
	Options *callOpts   `| @@`
	Call    *callArgs   `| @@`
	Incr    string      `| @( "++" | "--" )`
}

type indexOp struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Start *expression `"[" @@?`
	Slice bool        `( @":"`
	End   *expression `  @@? )? "]"`
}

type callOpts struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Args []*namedArg `"{" @@ ( "," @@ )* "}"`
}

type callArgs struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Named []*namedArg   `"(" ( "{" ( @@ ( "," @@ )* )? "}"`
	Args  []*expression `    | @@ ( "," @@ )* )? ")"`
}

type namedArg struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Name  *ident      `@@ ":"`
	Value *expression `@@`
}

type primary struct {
	Pos    lexer.Position
	EndPos lexer.Position

	New     *typeName     `  "new" @@`
	TypeOf  *typeName     `| "type" "(" @@ ")"`
	Payable bool          `| @"payable"`
	Bool    string        `| @( "true" | "false" )`
	Number  *numberLit    `| @@`
	Strings []string      `| @String+`
	Tuple   *tupleExpr    `| @@`
	Array   *arrayLiteral `| @@`
	Ident   *ident        `| @@`
}

type numberLit struct {
	Value string `@Number`
	Unit  string `@( "wei" | "gwei" | "ether" | "seconds" | "minutes" | "hours" | "days" | "weeks" | "years" )?`
}

type tupleExpr struct {
	Items []*expression `"(" @@? ( "," @@? )* ")"`
}

type arrayLiteral struct {
	Items []*expression `"[" @@ ( "," @@ )* "]"`
}
