package nginx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAST_DirectivesAndBlocks(t *testing.T) {
	tree, errs := BuildAST(Tokenize(`
server {
    listen 80;
    location /api {
        proxy_pass http://127.0.0.1:3000;
    }
}
`))

	require.Empty(t, errs)
	require.Len(t, tree.Children, 1)

	server := tree.Children[0]
	assert.Equal(t, BlockNode, server.Kind)
	assert.Equal(t, "server", server.Name)
	assert.Equal(t, 2, server.Line)
	require.Len(t, server.Children, 2)

	listen := server.Children[0]
	assert.Equal(t, DirectiveNode, listen.Kind)
	assert.Equal(t, []string{"80"}, listen.Args)

	loc := server.Children[1]
	assert.Equal(t, BlockNode, loc.Kind)
	assert.Equal(t, []string{"/api"}, loc.Args)
	require.Len(t, loc.Children, 1)
	assert.Equal(t, "proxy_pass", loc.Children[0].Name)
}

func TestBuildAST_CommentsIgnored(t *testing.T) {
	tree, errs := BuildAST(Tokenize("# header\nlisten 80; # inline\n"))

	require.Empty(t, errs)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "listen", tree.Children[0].Name)
}

func TestBuildAST_UnexpectedCloseBrace(t *testing.T) {
	tree, errs := BuildAST(Tokenize("}\nlisten 80;"))

	require.Len(t, errs, 1)
	assert.Equal(t, "unexpected '}' at line 1", errs[0])
	// Recovery continues past the error.
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "listen", tree.Children[0].Name)
}

func TestBuildAST_UnclosedBlock(t *testing.T) {
	tree, errs := BuildAST(Tokenize("server {\n    listen 80;\n"))

	require.Len(t, errs, 1)
	assert.Equal(t, "unclosed block 'server' at line 1", errs[0])
	require.Len(t, tree.Children, 1)
	assert.Len(t, tree.Children[0].Children, 1)
}

func TestBuildAST_UnexpectedEndOfInput(t *testing.T) {
	tree, errs := BuildAST(Tokenize("listen 80"))

	require.Len(t, errs, 1)
	assert.Equal(t, "unexpected end of input after 'listen' at line 1", errs[0])
	// The partial statement is still kept as a leaf.
	require.Len(t, tree.Children, 1)
	assert.Equal(t, []string{"80"}, tree.Children[0].Args)
}

func TestBuildAST_ResyncAfterBadToken(t *testing.T) {
	tree, errs := BuildAST(Tokenize("server { listen 80 }\nroot /srv;"))

	require.Len(t, errs, 2)
	assert.Equal(t, "unexpected token after 'listen' at line 1", errs[0])
	assert.Equal(t, "unclosed block 'server' at line 1", errs[1])
	// The resync skipped the rest of line 1, so root lands inside server.
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "root", tree.Children[0].Children[0].Name)
}

func TestNode_ChildHelpers(t *testing.T) {
	tree, errs := BuildAST(Tokenize("server { listen 80; location / { } location /api { } }"))
	require.Empty(t, errs)

	server := tree.Children[0]
	require.NotNil(t, server.Child("listen"))
	assert.Nil(t, server.Child("missing"))
	assert.Len(t, server.ChildBlocks("location"), 2)
}
