package project

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// Loader supplies the configured projects.
type Loader interface {
	Load() ([]Project, error)
}

// FileLoader reads projects from a JSON file, or a YAML file when the
// extension is .yaml or .yml.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load reads, validates and converts the projects file. A missing file is
// ErrProjectsFileNotFound; every other problem is ErrInvalidProjectsFile.
func (l *FileLoader) Load() ([]Project, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errors.ErrProjectsFileNotFound, l.Path)
		}
		return nil, l.invalid(err)
	}

	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".yaml", ".yml":
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return nil, l.invalid(fmt.Errorf("convert yaml to json: %w", err))
		}
	}

	projects, err := Parse(data)
	if err != nil {
		return nil, l.invalid(err)
	}
	return projects, nil
}

func (l *FileLoader) invalid(err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrInvalidProjectsFile, l.Path, err)
}

// -----------------------------------------------------------------------------
// File format
// -----------------------------------------------------------------------------

type fileDocument struct {
	Projects []fileProject `json:"projects"`
}

type fileProject struct {
	Name           string              `json:"name"`
	Path           string              `json:"path"`
	RepositoryURL  string              `json:"repositoryUrl"`
	Configuration  fileConfiguration   `json:"configuration"`
	CustomCommands []fileCustomCommand `json:"customCommands"`
}

type fileConfiguration struct {
	DefaultBranch     string `json:"defaultBranch"`
	DefaultScheme     string `json:"defaultScheme"`
	DefaultTestScheme string `json:"defaultTestScheme"`
	DefaultSimulator  string `json:"defaultSimulator"`
	SavePreference    string `json:"savePreference"`
}

type fileCustomCommand struct {
	Alias       string          `json:"alias"`
	Description string          `json:"description"`
	Operations  []fileOperation `json:"operations"`
}

type fileOperation struct {
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters"`
}

const projectsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["projects"],
  "properties": {
    "projects": {
      "type": "array",
      "items": {"$ref": "#/definitions/project"}
    }
  },
  "definitions": {
    "project": {
      "type": "object",
      "required": ["name", "path", "configuration"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "path": {"type": "string", "minLength": 1},
        "repositoryUrl": {"type": "string"},
        "configuration": {
          "type": "object",
          "required": ["defaultBranch"],
          "properties": {
            "defaultBranch": {"type": "string", "minLength": 1},
            "defaultScheme": {"type": "string"},
            "defaultTestScheme": {"type": "string"},
            "defaultSimulator": {"type": "string"},
            "savePreference": {"enum": ["stash", "branch"]}
          }
        },
        "customCommands": {
          "type": "array",
          "items": {"$ref": "#/definitions/customCommand"}
        }
      }
    },
    "customCommand": {
      "type": "object",
      "required": ["alias", "operations"],
      "properties": {
        "alias": {"type": "string", "pattern": "^\\S+$"},
        "description": {"type": "string"},
        "operations": {
          "type": "array",
          "minItems": 1,
          "items": {"$ref": "#/definitions/operation"}
        }
      }
    },
    "operation": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["cleanSlate", "save", "update", "build", "test", "run", "reset"]},
        "parameters": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("projects.schema.json", projectsSchema)
	})
	return compiledSchema, schemaErr
}

// Parse validates a JSON projects document against the schema and converts it.
func Parse(data []byte) ([]Project, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return nil, err
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return convert(doc)
}

func convert(doc fileDocument) ([]Project, error) {
	var problems []error
	seenProjects := make(map[string]bool)

	projects := make([]Project, 0, len(doc.Projects))
	for _, fp := range doc.Projects {
		if seenProjects[fp.Name] {
			problems = append(problems, errors.NewValidationError("project name", fp.Name, "duplicate project"))
		}
		seenProjects[fp.Name] = true

		p := Project{
			Name:          fp.Name,
			Path:          fp.Path,
			RepositoryURL: fp.RepositoryURL,
			Configuration: Configuration{
				DefaultBranch:     fp.Configuration.DefaultBranch,
				DefaultScheme:     fp.Configuration.DefaultScheme,
				DefaultTestScheme: fp.Configuration.DefaultTestScheme,
				DefaultSimulator:  fp.Configuration.DefaultSimulator,
				SavePreference:    SavePreference(fp.Configuration.SavePreference),
			},
		}

		seenAliases := make(map[string]bool)
		for _, fc := range fp.CustomCommands {
			if seenAliases[fc.Alias] {
				problems = append(problems, errors.NewValidationError("alias", fc.Alias, "duplicate custom command in project "+fp.Name))
			}
			seenAliases[fc.Alias] = true

			cc := CustomCommand{Alias: fc.Alias, Description: fc.Description}
			for _, fo := range fc.Operations {
				kind, err := ParseKind(fo.Type)
				if err != nil {
					problems = append(problems, err)
					continue
				}
				cc.Operations = append(cc.Operations, NewOperation(kind, fo.Parameters))
			}
			if len(cc.Operations) == 0 {
				problems = append(problems, errors.NewValidationError("alias", fc.Alias, "custom command has no operations"))
			}
			p.CustomCommands = append(p.CustomCommands, cc)
		}
		projects = append(projects, p)
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return projects, nil
}
