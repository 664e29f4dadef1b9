package lexfile

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The rules file is line oriented, so the lexer tracks where a line starts
// by state: every state that reads a line tail pops on the newline.
var fileLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Sep", Pattern: `%%[^\n]*`, Action: lexer.Push("Rules")},
		{Name: "CodeOpen", Pattern: `%\{`, Action: lexer.Push("Block")},
		{Name: "Directive", Pattern: `%[A-Za-z]+`, Action: lexer.Push("DirArgs")},
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: "Indented", Pattern: `[ \t][^\n]*`},
		{Name: "Name", Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Action: lexer.Push("DefPattern")},
		{Name: "EOL", Pattern: `\r?\n`},
	},
	"DirArgs": {
		{Name: "Space", Pattern: `[ \t,]+`},
		{Name: "Word", Pattern: `[^ \t,\r\n]+`},
		{Name: "EOL", Pattern: `\r?\n`, Action: lexer.Pop()},
	},
	"DefPattern": {
		{Name: "Space", Pattern: `[ \t]+`},
		{Name: "Definition", Pattern: `[^ \t\r\n](?:[^\r\n]*[^ \t\r\n])?`},
		{Name: "EOL", Pattern: `\r?\n`, Action: lexer.Pop()},
	},
	"Block": {
		{Name: "BlockEnd", Pattern: `%\}[^\n]*`, Action: lexer.Pop()},
		{Name: "BlockLine", Pattern: `[^\n]+|\n`},
	},
	"Rules": {
		{Name: "Sep", Pattern: `%%[^\n]*`, Action: lexer.Push("Code")},
		{Name: "CodeOpen", Pattern: `%\{`, Action: lexer.Push("Block")},
		{Name: "Indented", Pattern: `[ \t][^\n]*`},
		{Name: "EOL", Pattern: `\r?\n`},
		{Name: "StateList", Pattern: `<[A-Za-z_$*][^<>\n]*>`},
		{Name: "Pattern", Pattern: `(?:"(?:\\.|[^"\\\n])*"|\[(?:\\.|[^\]\\\n])*\]|\\.|[^\s"\[\\])+`, Action: lexer.Push("Action")},
	},
	"Action": {
		{Name: "Space", Pattern: `[ \t]+`},
		{Name: "BraceOpen", Pattern: `\{`, Action: lexer.Push("Brace")},
		{Name: "ActionText", Pattern: `[^\s{][^\r\n]*`},
		{Name: "EOL", Pattern: `\r?\n`, Action: lexer.Pop()},
	},
	"Brace": {
		{Name: "BraceOpen", Pattern: `\{`, Action: lexer.Push("Brace")},
		{Name: "BraceClose", Pattern: `\}`, Action: lexer.Pop()},
		{Name: "BraceText", Pattern: `"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'|/\*(?:[^*]|\*+[^*/])*\*+/|//[^\n]*|[^{}"'/]+|["'/]`},
	},
	"Code": {
		{Name: "Code", Pattern: `[\s\S]+`},
	},
})

var fileParser = participle.MustBuild[file](
	participle.Lexer(fileLexer),
	participle.Elide("Space", "Comment", "Indented"),
)

type file struct {
	Defs  []*defEntry   `parser:"( @@ | EOL )*"`
	Sep   bool          `parser:"( @Sep"`
	Rules *rulesSection `parser:"  @@? )?"`
}

type defEntry struct {
	Directive  *directive  `parser:"  @@"`
	Definition *definition `parser:"| @@"`
	Block      *codeBlock  `parser:"| @@"`
}

type directive struct {
	Pos  lexer.Position
	Name string  `parser:"@Directive"`
	Args []*word `parser:"@@*"`
}

type word struct {
	Pos  lexer.Position
	Text string `parser:"@Word"`
}

type definition struct {
	Pos     lexer.Position
	Name    string   `parser:"@Name"`
	Pattern *pattern `parser:"@@?"`
}

type codeBlock struct {
	Lines []string `parser:"CodeOpen @BlockLine* BlockEnd?"`
}

type rulesSection struct {
	Entries []*ruleEntry `parser:"( @@ | EOL )*"`
	Code    string       `parser:"( Sep @Code? )?"`
}

type ruleEntry struct {
	Block *codeBlock `parser:"  @@"`
	Rule  *ruleLine  `parser:"| @@"`
}

type ruleLine struct {
	Pos     lexer.Position
	States  *string  `parser:"@StateList?"`
	Pattern *pattern `parser:"@@"`
	Action  *action  `parser:"@@?"`
	Trailer string   `parser:"@ActionText?"`
}

type pattern struct {
	Pos  lexer.Position
	Text string `parser:"@( Definition | Pattern )"`
}

type action struct {
	Pos   lexer.Position
	Block *braceBlock `parser:"  @@"`
	Text  *string     `parser:"| @ActionText"`
}

func (a *action) String() string {
	if a.Block != nil {
		return a.Block.String()
	}
	return strings.TrimSpace(*a.Text)
}

type braceBlock struct {
	Parts []*bracePart `parser:"BraceOpen @@* BraceClose"`
}

type bracePart struct {
	Text   *string     `parser:"  @BraceText"`
	Nested *braceBlock `parser:"| @@"`
}

func (b *braceBlock) String() string {
	var sb strings.Builder
	b.write(&sb)
	return sb.String()
}

func (b *braceBlock) write(sb *strings.Builder) {
	sb.WriteByte('{')
	for _, p := range b.Parts {
		if p.Nested != nil {
			p.Nested.write(sb)
			continue
		}
		sb.WriteString(*p.Text)
	}
	sb.WriteByte('}')
}
