package wandb

const runFragment = `
fragment RunFragment on Run {
  id
  name
  displayName
  tags
  state
  createdAt
}`

const artifactFragment = `
fragment ArtifactFragment on Artifact {
  id
  state
  versionIndex
  createdAt
  artifactType { name }
  artifactSequence { name }
  aliases { alias }
}`

const runsQuery = `
query Runs($project: String!, $entity: String!, $cursor: String, $perPage: Int = 50, $order: String, $filters: JSONString) {
  project(name: $project, entityName: $entity) {
    runCount(filters: $filters)
    runs(filters: $filters, after: $cursor, first: $perPage, order: $order) {
      edges { node { ...RunFragment } cursor }
      pageInfo { endCursor hasNextPage }
    }
  }
}` + runFragment

const runQuery = `
query Run($project: String!, $entity: String!, $name: String!) {
  project(name: $project, entityName: $entity) {
    run(name: $name) { ...RunFragment }
  }
}` + runFragment

const runOutputArtifactsQuery = `
query RunOutputArtifacts($entity: String!, $project: String!, $runName: String!, $cursor: String, $perPage: Int) {
  project(name: $project, entityName: $entity) {
    run(name: $runName) {
      outputArtifacts(after: $cursor, first: $perPage) {
        totalCount
        edges { node { ...ArtifactFragment } cursor }
        pageInfo { endCursor hasNextPage }
      }
    }
  }
}` + artifactFragment

const linkArtifactMutation = `
mutation LinkArtifact($artifactID: ID!, $artifactPortfolioName: String!, $entityName: String!, $projectName: String!, $aliases: [ArtifactAliasInput!]) {
  linkArtifact(input: {artifactID: $artifactID, artifactPortfolioName: $artifactPortfolioName, entityName: $entityName, projectName: $projectName, aliases: $aliases}) {
    versionIndex
  }
}`

const registryArtifactsQuery = `
query RegistryArtifacts($entityName: String!, $projectName: String!, $artifactType: String!, $collection: String!, $cursor: String, $perPage: Int) {
  project(name: $projectName, entityName: $entityName) {
    artifactType(name: $artifactType) {
      artifactCollection(name: $collection) {
        name
        artifacts(after: $cursor, first: $perPage) {
          edges { node { ...ArtifactFragment } version cursor }
          pageInfo { endCursor hasNextPage }
        }
      }
    }
  }
}` + artifactFragment

const upsertViewMutation = `
mutation UpsertView($entityName: String, $projectName: String, $type: String, $name: String, $displayName: String, $description: String, $spec: String!) {
  upsertView(input: {entityName: $entityName, projectName: $projectName, name: $name, displayName: $displayName, description: $description, type: $type, spec: $spec}) {
    view {
      id
      name
      displayName
      description
      project { name entityName }
    }
    inserted
  }
}`
