package mcpserver

// OutlineFormatContract documents how notes declare hierarchy and how the
// generated outlines are laid out.
const OutlineFormatContract = `# Breadcrumbs Outline Format

## Declaring the hierarchy

A note names its parents and children in YAML frontmatter or in inline
` + "`key:: value`" + ` fields. The default keys are:

| direction | keys            |
|-----------|-----------------|
| up        | ` + "`up`, `parent`" + `   |
| down      | ` + "`down`, `child`" + `  |

Values are note names or [[wikilinks]]; lists are allowed.

` + "```" + `markdown
---
up: "[[Projects]]"
aliases: [Roadmap Q3]
---
child:: [[Milestone 1]], [[Milestone 2]]
` + "```" + `

Every edge implies its reverse: when B lists A as ` + "`up`" + `, A has B as ` + "`down`" + `.

## Outline layout

- One node per line: two spaces per depth level, then ` + "`- `" + `, then the label.
- Every line ends with a newline.
- Each path from the start note to a leaf is written leaf first. The start
  note itself is not listed.
- A node is written at most once per depth; later paths skip lines already
  written at that depth.
- With wikilinks enabled a label is written as ` + "`[[Name]]`" + `.
- With aliases enabled a line gains ` + "` (alias1, alias2)`" + ` listing the note's
  ` + "`alias`" + ` then ` + "`aliases`" + ` frontmatter values.

## Global index

For every top-level note (no parent), the note name on its own line, then its
outline, then an empty line.

## Example

` + "```" + `text
- Milestone 1
  - Roadmap
- Milestone 2
` + "```" + `
`
